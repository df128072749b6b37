// Package placecache caches place search results so repeated shares of the
// same place skip the metered search call.
package placecache

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "placesearch:"

// Cache is a string key/value store with expiry
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Searcher is the place text search being cached
type Searcher interface {
	SearchPlace(ctx context.Context, query string) (*places.Candidate, error)
}

// CachedSearcher wraps a Searcher. Only hits are cached; empty results and
// errors always reach the underlying searcher next time.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCachedSearcher creates a new CachedSearcher
func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration, logger logrus.FieldLogger) *CachedSearcher {
	return &CachedSearcher{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   logger.WithField("component", "placecache"),
	}
}

// SearchPlace consults the cache before the wrapped searcher
func (s *CachedSearcher) SearchPlace(ctx context.Context, query string) (*places.Candidate, error) {
	key := cacheKey(query)

	id, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("Place cache read failed")
	} else if found {
		return &places.Candidate{ID: id}, nil
	}

	cand, err := s.next.SearchPlace(ctx, query)
	if err != nil || cand == nil {
		return cand, err
	}

	if err := s.cache.Set(ctx, key, cand.ID, s.ttl); err != nil {
		s.log.WithError(err).Warn("Place cache write failed")
	}
	return cand, nil
}

func cacheKey(query string) string {
	return keyPrefix + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
