package resolver

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform identifies where a shared URL comes from
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformWebpage   Platform = "webpage"
)

var platformHosts = []struct {
	platform Platform
	domains  []string
}{
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformInstagram, []string{"instagram.com", "instagr.am"}},
}

// DetectPlatform classifies rawURL. Any absolute http(s) URL that is neither
// TikTok nor Instagram is a generic webpage.
func DetectPlatform(rawURL string) (Platform, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrecognizedPlatform, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrUnrecognizedPlatform, u.Scheme)
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("%w: missing host", ErrUnrecognizedPlatform)
	}

	for _, p := range platformHosts {
		for _, domain := range p.domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return p.platform, nil
			}
		}
	}
	return PlatformWebpage, nil
}
