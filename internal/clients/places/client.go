// Package places talks to the Places API (text search and place details).
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://places.googleapis.com/v1"

const (
	searchFieldMask  = "places.id"
	detailsFieldMask = "id,displayName,location,formattedAddress,internationalPhoneNumber,websiteUri,editorialSummary"
)

// Candidate is the top-ranked text search hit
type Candidate struct {
	ID string
}

// Details is the canonical description of a place
type Details struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Address   string
	Phone     string
	Website   string
	Summary   string
}

// Config holds the Places API settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a thin HTTP client; ranking is left entirely to the service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Client
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Places []struct {
		ID string `json:"id"`
	} `json:"places"`
}

// SearchPlace returns the first candidate for query, or nil when there is none.
func (c *Client) SearchPlace(ctx context.Context, query string) (*Candidate, error) {
	body, err := json.Marshal(map[string]interface{}{
		"textQuery": query,
		"pageSize":  1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	var result searchResponse
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("place search failed: %w", err)
	}
	if len(result.Places) == 0 || result.Places[0].ID == "" {
		return nil, nil
	}
	return &Candidate{ID: result.Places[0].ID}, nil
}

type detailsResponse struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	FormattedAddress         string `json:"formattedAddress"`
	InternationalPhoneNumber string `json:"internationalPhoneNumber"`
	WebsiteURI               string `json:"websiteUri"`
	EditorialSummary         struct {
		Text string `json:"text"`
	} `json:"editorialSummary"`
}

// GetPlaceDetails fetches the canonical details of a place
func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (*Details, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+url.PathEscape(placeID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	var result detailsResponse
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("place details failed: %w", err)
	}
	if result.Location == nil {
		return nil, fmt.Errorf("place details for %s carry no coordinates", placeID)
	}

	return &Details{
		ID:        placeID,
		Name:      result.DisplayName.Text,
		Latitude:  result.Location.Latitude,
		Longitude: result.Location.Longitude,
		Address:   result.FormattedAddress,
		Phone:     result.InternationalPhoneNumber,
		Website:   result.WebsiteURI,
		Summary:   result.EditorialSummary.Text,
	}, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return json.Unmarshal(body, out)
}
