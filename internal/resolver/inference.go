package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// PlaceNameInferer turns post metadata into a place search query.
// An empty query means no place could be inferred.
type PlaceNameInferer interface {
	InferPlaceQuery(ctx context.Context, meta *PostMetadata) (string, error)
}

// LLMPlaceNameInferer asks the model for a "<name> <city>" style query
type LLMPlaceNameInferer struct {
	llm Completer
	log logrus.FieldLogger
}

// NewLLMPlaceNameInferer creates a new LLMPlaceNameInferer
func NewLLMPlaceNameInferer(completer Completer, logger logrus.FieldLogger) *LLMPlaceNameInferer {
	return &LLMPlaceNameInferer{
		llm: completer,
		log: logger.WithField("component", "place_inferer"),
	}
}

const inferPrompt = `You identify the single real-world place (restaurant, bar, shop, venue, landmark) a social media post is about.
Reply with one line: the place name followed by its city, for example "Joe's Pizza New York".
Reply NONE if the post is not about one specific place.`

// InferPlaceQuery returns the search query, or "" when the model finds no place
func (i *LLMPlaceNameInferer) InferPlaceQuery(ctx context.Context, meta *PostMetadata) (string, error) {
	reply, err := i.llm.Complete(ctx, inferPrompt, describeMetadata(meta))
	if err != nil {
		return "", fmt.Errorf("infer place: %w", err)
	}

	query := normalizeQueryReply(reply)
	i.log.WithFields(logrus.Fields{"url": meta.URL, "query": query}).Debug("Inferred place query")
	return query, nil
}

func normalizeQueryReply(reply string) string {
	line := strings.TrimSpace(reply)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	line = strings.Trim(line, "\"'` ")
	switch strings.ToUpper(strings.TrimRight(line, ".")) {
	case "", "NONE", "N/A", "UNKNOWN":
		return ""
	}
	return line
}

func describeMetadata(meta *PostMetadata) string {
	var b strings.Builder
	field := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, v)
		}
	}
	field("Platform", string(meta.Platform))
	field("URL", meta.URL)
	field("Title", meta.Title)
	field("Description", meta.Description)
	field("Author", meta.AuthorName)
	field("Site", meta.SiteName)
	field("Location hint", meta.LocationHint)
	return b.String()
}
