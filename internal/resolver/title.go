package resolver

import "strings"

var (
	titlePrefixes = []string{"welcome to ", "visit "}
	titleSuffixes = []string{" - menu", " - home"}
)

// CleanTitle strips marketing decoration from page titles, e.g.
// "Welcome to Joe's Pizza - Home | Best Slices" becomes "Joe's Pizza".
func CleanTitle(title string) string {
	t := strings.TrimSpace(title)
	if idx := strings.Index(t, " | "); idx > 0 {
		t = strings.TrimSpace(t[:idx])
	}
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(strings.ToLower(t), suffix) {
			t = strings.TrimSpace(t[:len(t)-len(suffix)])
		}
	}
	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(strings.ToLower(t), prefix) {
			t = strings.TrimSpace(t[len(prefix):])
		}
	}
	return t
}
