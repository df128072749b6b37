package resolver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func oEmbedServer(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "https://tiktok.com/@x/video/123", r.URL.Query().Get("url"))
		status := statuses[len(statuses)-1]
		if int(n) <= len(statuses) {
			status = statuses[n-1]
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(`{"title":"Best slice in NYC 🍕","author_name":"x","thumbnail_url":"https://p16.tiktokcdn.com/t.jpg"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestTikTokFetch(t *testing.T) {
	srv, calls := oEmbedServer(t, http.StatusOK)
	f := NewTikTokFetcher(srv.URL, time.Second, time.Millisecond, quietLogger())

	meta, err := f.Fetch(context.Background(), "https://tiktok.com/@x/video/123")

	require.NoError(t, err)
	assert.Equal(t, "Best slice in NYC 🍕", meta.Title)
	assert.Equal(t, "x", meta.AuthorName)
	assert.Equal(t, "https://p16.tiktokcdn.com/t.jpg", meta.ThumbnailURL)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestTikTokFetchRetriesOnceOnServerError(t *testing.T) {
	srv, calls := oEmbedServer(t, http.StatusServiceUnavailable, http.StatusOK)
	f := NewTikTokFetcher(srv.URL, time.Second, time.Millisecond, quietLogger())

	meta, err := f.Fetch(context.Background(), "https://tiktok.com/@x/video/123")

	require.NoError(t, err)
	assert.Equal(t, "x", meta.AuthorName)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestTikTokFetchRetriesOnceOnRateLimit(t *testing.T) {
	srv, calls := oEmbedServer(t, http.StatusTooManyRequests, http.StatusTooManyRequests)
	f := NewTikTokFetcher(srv.URL, time.Second, time.Millisecond, quietLogger())

	_, err := f.Fetch(context.Background(), "https://tiktok.com/@x/video/123")

	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestTikTokFetchDoesNotRetryClientErrors(t *testing.T) {
	srv, calls := oEmbedServer(t, http.StatusNotFound)
	f := NewTikTokFetcher(srv.URL, time.Second, time.Millisecond, quietLogger())

	_, err := f.Fetch(context.Background(), "https://tiktok.com/@x/video/123")

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}
