package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultTikTokOEmbedURL = "https://www.tiktok.com/oembed"

// TikTokFetcher reads post metadata from the TikTok oEmbed endpoint. A 429 or
// 5xx answer is retried exactly once after a fixed backoff.
type TikTokFetcher struct {
	endpoint   string
	httpClient *http.Client
	backoff    time.Duration
	log        logrus.FieldLogger
}

// NewTikTokFetcher creates a new TikTokFetcher
func NewTikTokFetcher(endpoint string, timeout, backoff time.Duration, logger logrus.FieldLogger) *TikTokFetcher {
	if endpoint == "" {
		endpoint = DefaultTikTokOEmbedURL
	}
	return &TikTokFetcher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    backoff,
		log:        logger.WithField("component", "tiktok"),
	}
}

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Fetch returns the normalized metadata of a TikTok video
func (f *TikTokFetcher) Fetch(ctx context.Context, videoURL string) (*PostMetadata, error) {
	meta, status, err := f.fetchOnce(ctx, videoURL)
	if err == nil || !retryableStatus(status) {
		return meta, err
	}

	f.log.WithError(err).WithField("status", status).Warn("oEmbed call failed, retrying once")
	select {
	case <-time.After(f.backoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	meta, _, err = f.fetchOnce(ctx, videoURL)
	return meta, err
}

func (f *TikTokFetcher) fetchOnce(ctx context.Context, videoURL string) (*PostMetadata, int, error) {
	endpoint := f.endpoint + "?url=" + url.QueryEscape(videoURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("oEmbed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("oEmbed returned status %d", resp.StatusCode)
	}

	var body oEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("oEmbed decode failed: %w", err)
	}
	return &PostMetadata{
		Title:        body.Title,
		AuthorName:   body.AuthorName,
		ThumbnailURL: body.ThumbnailURL,
		SiteName:     "TikTok",
	}, resp.StatusCode, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
