package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/spotdrop/backend/internal/clients/llm"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const maxSummaryInput = 6000

// Completer is the text generation capability used by the LLM-backed stages
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// HTMLSummarizer asks the model to describe a page when its tags are not enough.
// renderer may be nil.
type HTMLSummarizer struct {
	llm      Completer
	renderer PageRenderer
	log      logrus.FieldLogger
}

// NewHTMLSummarizer creates a new HTMLSummarizer
func NewHTMLSummarizer(completer Completer, renderer PageRenderer, logger logrus.FieldLogger) *HTMLSummarizer {
	return &HTMLSummarizer{
		llm:      completer,
		renderer: renderer,
		log:      logger.WithField("component", "html_summarizer"),
	}
}

const summarizePrompt = `You read the visible text of a web page that was shared as a place recommendation.
Reply with a single JSON object and nothing else:
{"title": "...", "author": "...", "description": "...", "location": "..."}
"title" is the name of the business or place, "location" is any address or city you can see.
Use "" for anything you cannot tell from the text.`

type pageSummary struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Summarize extracts metadata from rawHTML, or from the rendered page when a renderer is set
func (s *HTMLSummarizer) Summarize(ctx context.Context, pageURL, rawHTML string) (*PostMetadata, error) {
	source := rawHTML
	if s.renderer != nil {
		rendered, err := s.renderer.Render(ctx, pageURL)
		if err != nil {
			s.log.WithError(err).WithField("url", pageURL).Warn("Render failed, summarizing fetched HTML")
		} else {
			source = rendered
		}
	}

	text := visibleText(source)
	if text == "" {
		return nil, errors.New("page has no visible text")
	}
	text = truncateUTF8(text, maxSummaryInput)

	reply, err := s.llm.Complete(ctx, summarizePrompt, "URL: "+pageURL+"\n\n"+text)
	if err != nil {
		return nil, fmt.Errorf("summarize page: %w", err)
	}

	var summary pageSummary
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &summary); err != nil {
		return nil, fmt.Errorf("decode page summary: %w", err)
	}
	return &PostMetadata{
		Title:        strings.TrimSpace(summary.Title),
		AuthorName:   strings.TrimSpace(summary.Author),
		Description:  strings.TrimSpace(summary.Description),
		LocationHint: strings.TrimSpace(summary.Location),
	}, nil
}

// visibleText flattens the text nodes of an HTML document, skipping scripts and styles
func visibleText(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "svg":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
