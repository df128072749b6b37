package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// PostMetadata is the normalized description of a shared post
type PostMetadata struct {
	URL          string   `json:"url"`
	Platform     Platform `json:"platform"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	AuthorName   string   `json:"author_name,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	SiteName     string   `json:"site_name,omitempty"`
	LocationHint string   `json:"location_hint,omitempty"`
}

func (m *PostMetadata) complete() bool {
	return m.Title != "" && m.Description != ""
}

func (m *PostMetadata) empty() bool {
	return m.Title == "" && m.Description == "" && m.AuthorName == "" && m.LocationHint == ""
}

// fillFrom copies fields that are still empty in m from other
func (m *PostMetadata) fillFrom(other *PostMetadata) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&m.Title, other.Title)
	fill(&m.Description, other.Description)
	fill(&m.AuthorName, other.AuthorName)
	fill(&m.ThumbnailURL, other.ThumbnailURL)
	fill(&m.SiteName, other.SiteName)
	fill(&m.LocationHint, other.LocationHint)
}

// placeholderMetadata describes a post whose metadata could not be fetched
func placeholderMetadata(rawURL string, platform Platform) *PostMetadata {
	meta := &PostMetadata{URL: rawURL, Platform: platform}
	if u, err := url.Parse(rawURL); err == nil {
		meta.Title = u.Hostname()
	}
	return meta
}

// MetadataExtractor picks the extraction strategy for each platform.
// summarizer may be nil, in which case incomplete Open-Graph data is used as is.
type MetadataExtractor struct {
	tiktok     *TikTokFetcher
	pages      *OpenGraphFetcher
	summarizer *HTMLSummarizer
	log        logrus.FieldLogger
}

// NewMetadataExtractor creates a new MetadataExtractor
func NewMetadataExtractor(tiktok *TikTokFetcher, pages *OpenGraphFetcher, summarizer *HTMLSummarizer, logger logrus.FieldLogger) *MetadataExtractor {
	return &MetadataExtractor{
		tiktok:     tiktok,
		pages:      pages,
		summarizer: summarizer,
		log:        logger.WithField("component", "metadata"),
	}
}

// ExtractMetadata returns normalized metadata with a cleaned title
func (e *MetadataExtractor) ExtractMetadata(ctx context.Context, rawURL string, platform Platform) (*PostMetadata, error) {
	var (
		meta *PostMetadata
		err  error
	)
	switch platform {
	case PlatformTikTok:
		meta, err = e.tiktok.Fetch(ctx, rawURL)
	case PlatformInstagram, PlatformWebpage:
		meta, err = e.extractPage(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnrecognizedPlatform, platform)
	}
	if err != nil {
		return nil, err
	}

	meta.URL = rawURL
	meta.Platform = platform
	meta.Title = CleanTitle(meta.Title)
	return meta, nil
}

func (e *MetadataExtractor) extractPage(ctx context.Context, rawURL string) (*PostMetadata, error) {
	log := e.log.WithField("url", rawURL)

	meta, rawHTML, fetchErr := e.pages.Fetch(ctx, rawURL)
	if errors.Is(fetchErr, ErrBlockedAddress) {
		return nil, fetchErr
	}
	if fetchErr == nil && meta.complete() {
		return meta, nil
	}
	if meta == nil {
		meta = &PostMetadata{}
	}

	if e.summarizer != nil {
		summary, err := e.summarizer.Summarize(ctx, rawURL, rawHTML)
		if err == nil {
			meta.fillFrom(summary)
		} else {
			log.WithError(err).Warn("HTML summarizer failed")
		}
	}

	if meta.empty() {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, errors.New("page carries no usable metadata")
	}
	return meta, nil
}
