package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopbackFetcher is an OpenGraphFetcher allowed to reach httptest servers
func loopbackFetcher() *OpenGraphFetcher {
	f := NewOpenGraphFetcher(time.Second, quietLogger())
	f.httpClient = &http.Client{Timeout: time.Second}
	return f
}

const joesPage = `<!doctype html>
<html><head>
<title>Joe's Pizza | Greenwich Village</title>
<meta property="og:title" content="Joe's Pizza - Home">
<meta property="og:description" content="Classic New York slices since 1975.">
<meta property="og:image" content="https://joespizzanyc.com/og.jpg">
<meta property="og:site_name" content="Joe's Pizza">
<meta property="og:street-address" content="7 Carmine St">
<meta property="og:locality" content="New York">
<meta name="author" content="Joe">
</head><body><p>Pizza</p></body></html>`

func TestParseOpenGraph(t *testing.T) {
	meta, err := ParseOpenGraph(strings.NewReader(joesPage))

	require.NoError(t, err)
	assert.Equal(t, "Joe's Pizza - Home", meta.Title)
	assert.Equal(t, "Classic New York slices since 1975.", meta.Description)
	assert.Equal(t, "https://joespizzanyc.com/og.jpg", meta.ThumbnailURL)
	assert.Equal(t, "Joe's Pizza", meta.SiteName)
	assert.Equal(t, "Joe", meta.AuthorName)
	assert.Equal(t, "7 Carmine St, New York", meta.LocationHint)
}

func TestParseOpenGraphFallsBackToPlainTags(t *testing.T) {
	page := `<html><head><title> Corner Cafe </title>
<meta name="description" content="Coffee and pastries">
<meta property="place:location:latitude" content="51.5">
<meta property="place:location:longitude" content="-0.12">
</head></html>`

	meta, err := ParseOpenGraph(strings.NewReader(page))

	require.NoError(t, err)
	assert.Equal(t, "Corner Cafe", meta.Title)
	assert.Equal(t, "Coffee and pastries", meta.Description)
	assert.Equal(t, "51.5, -0.12", meta.LocationHint)
}

func TestOpenGraphFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(joesPage))
	}))
	defer srv.Close()

	f := loopbackFetcher()
	meta, raw, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Joe's Pizza - Home", meta.Title)
	assert.Contains(t, raw, "<p>Pizza</p>")
}

func TestOpenGraphFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := loopbackFetcher()
	_, _, err := f.Fetch(context.Background(), srv.URL)

	assert.Error(t, err)
}
