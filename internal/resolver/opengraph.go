package resolver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	maxPageBytes = 2 << 20
	userAgent    = "Mozilla/5.0 (compatible; spotdrop/1.0; +https://spotdrop.app)"
)

// OpenGraphFetcher downloads a page and reads its Open-Graph and standard meta tags
type OpenGraphFetcher struct {
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewOpenGraphFetcher creates a new OpenGraphFetcher. It refuses to connect to
// loopback, private and link-local addresses.
func NewOpenGraphFetcher(timeout time.Duration, logger logrus.FieldLogger) *OpenGraphFetcher {
	return &OpenGraphFetcher{
		httpClient: newPublicHTTPClient(timeout),
		log:        logger.WithField("component", "opengraph"),
	}
}

// Fetch returns the page metadata and the raw HTML it was read from
func (f *OpenGraphFetcher) Fetch(ctx context.Context, pageURL string) (*PostMetadata, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read page: %w", err)
	}

	meta, err := ParseOpenGraph(bytes.NewReader(body))
	if err != nil {
		return nil, string(body), err
	}
	return meta, string(body), nil
}

// ParseOpenGraph reads Open-Graph tags from an HTML document. og:* values win
// over their plain HTML counterparts.
func ParseOpenGraph(r io.Reader) (*PostMetadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tags := map[string]string{}
	var docTitle string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if docTitle == "" && n.FirstChild != nil {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				if key != "" && content != "" {
					if _, seen := tags[key]; !seen {
						tags[key] = content
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	meta := &PostMetadata{
		Title:        firstNonEmpty(tags["og:title"], docTitle),
		Description:  firstNonEmpty(tags["og:description"], tags["description"]),
		AuthorName:   firstNonEmpty(tags["author"], tags["article:author"]),
		ThumbnailURL: tags["og:image"],
		SiteName:     tags["og:site_name"],
		LocationHint: locationHint(tags),
	}
	return meta, nil
}

func locationHint(tags map[string]string) string {
	var parts []string
	for _, key := range []string{"og:street-address", "og:locality", "og:region", "og:country-name"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}

	lat, lng := tags["place:location:latitude"], tags["place:location:longitude"]
	if lat != "" && lng != "" {
		return lat + ", " + lng
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
