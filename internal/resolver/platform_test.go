package resolver

import (
	"errors"
	"testing"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://tiktok.com/@x/video/123", PlatformTikTok},
		{"https://www.tiktok.com/@joe/video/7301", PlatformTikTok},
		{"https://vm.tiktok.com/ZMabc/", PlatformTikTok},
		{"HTTPS://WWW.TIKTOK.COM/@x/video/1", PlatformTikTok},
		{"https://www.instagram.com/p/Cxyz/", PlatformInstagram},
		{"https://instagr.am/p/Cxyz/", PlatformInstagram},
		{"https://joespizzanyc.com/menu", PlatformWebpage},
		{"http://notatiktok.com/video", PlatformWebpage},
		{"  https://example.org  ", PlatformWebpage},
	}

	for _, tt := range tests {
		got, err := DetectPlatform(tt.url)
		if err != nil {
			t.Errorf("DetectPlatform(%q) returned error: %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectPlatform(%q) = %q; want %q", tt.url, got, tt.want)
		}
	}
}

func TestDetectPlatformRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"not a url",
		"ftp://tiktok.com/@x/video/1",
		"mailto:joe@example.com",
		"https://",
		"https://localhost/page",
		"/relative/path",
	} {
		if _, err := DetectPlatform(raw); !errors.Is(err, ErrUnrecognizedPlatform) {
			t.Errorf("DetectPlatform(%q) error = %v; want ErrUnrecognizedPlatform", raw, err)
		}
	}
}
