package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/spotdrop/backend/internal/clients/llm"
	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/sirupsen/logrus"
)

// Tagline is the short description and emoji attached to a location
type Tagline struct {
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// TaglineContext carries what is known about the place. Details is nil for
// posts that could not be matched to a place.
type TaglineContext struct {
	Metadata *PostMetadata
	Details  *places.Details
}

// TaglineGenerator produces a Tagline for a location
type TaglineGenerator interface {
	GenerateTagline(ctx context.Context, in TaglineContext) (*Tagline, error)
}

// LLMTaglineGenerator writes taglines with the model
type LLMTaglineGenerator struct {
	llm Completer
	log logrus.FieldLogger
}

// NewLLMTaglineGenerator creates a new LLMTaglineGenerator
func NewLLMTaglineGenerator(completer Completer, logger logrus.FieldLogger) *LLMTaglineGenerator {
	return &LLMTaglineGenerator{
		llm: completer,
		log: logger.WithField("component", "tagline"),
	}
}

const (
	taglineWithDetailsPrompt = `You write the card text for a saved place.
Using the place details and the social post, reply with a single JSON object and nothing else:
{"description": "<one sentence, under 90 characters>", "emoji": "<one emoji that fits the place>"}`

	taglineMetadataOnlyPrompt = `You write the card text for a saved link whose exact place is unknown.
Using only the post below, reply with a single JSON object and nothing else:
{"description": "<one sentence, under 90 characters>", "emoji": "<one emoji that fits the post>"}`
)

// GenerateTagline picks the details prompt when place details are known
func (g *LLMTaglineGenerator) GenerateTagline(ctx context.Context, in TaglineContext) (*Tagline, error) {
	system := taglineMetadataOnlyPrompt
	var b strings.Builder
	if in.Details != nil {
		system = taglineWithDetailsPrompt
		fmt.Fprintf(&b, "Place: %s\nAddress: %s\n", in.Details.Name, in.Details.Address)
		if in.Details.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", in.Details.Summary)
		}
		b.WriteString("\n")
	}
	if in.Metadata != nil {
		b.WriteString(describeMetadata(in.Metadata))
	}

	reply, err := g.llm.Complete(ctx, system, b.String())
	if err != nil {
		return nil, fmt.Errorf("generate tagline: %w", err)
	}

	var tagline Tagline
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &tagline); err != nil {
		return nil, fmt.Errorf("decode tagline: %w", err)
	}
	tagline.Description = strings.TrimSpace(tagline.Description)
	tagline.Emoji = strings.TrimSpace(tagline.Emoji)
	if tagline.Description == "" {
		return nil, errors.New("tagline has no description")
	}
	if tagline.Emoji == "" {
		tagline.Emoji = fallbackEmoji
	}
	return &tagline, nil
}
