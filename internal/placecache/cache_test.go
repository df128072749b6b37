package placecache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchPlace(ctx context.Context, query string) (*places.Candidate, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.Candidate), args.Error(1)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupBadgerCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := NewBadgerCache(t.TempDir(), quietLogger())
	require.NoError(t, err, "Failed to open test badger cache")
	t.Cleanup(func() { assert.NoError(t, c.Close()) })
	return c
}

func TestBadgerCacheGetSet(t *testing.T) {
	c := setupBadgerCache(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", "v", time.Hour))
	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)
}

func TestCachedSearcherCachesHits(t *testing.T) {
	next := new(mockSearcher)
	next.On("SearchPlace", "Joe's Pizza, NYC").Return(&places.Candidate{ID: "ChIJabc"}, nil).Once()

	s := NewCachedSearcher(next, setupBadgerCache(t), time.Hour, quietLogger())
	ctx := context.Background()

	first, err := s.SearchPlace(ctx, "Joe's Pizza, NYC")
	require.NoError(t, err)
	// differently spaced and cased queries share a key
	second, err := s.SearchPlace(ctx, "  joe's pizza,   nyc ")
	require.NoError(t, err)

	assert.Equal(t, "ChIJabc", first.ID)
	assert.Equal(t, "ChIJabc", second.ID)
	next.AssertNumberOfCalls(t, "SearchPlace", 1)
}

func TestCachedSearcherDoesNotCacheMissesOrErrors(t *testing.T) {
	next := new(mockSearcher)
	next.On("SearchPlace", "nowhere").Return(nil, nil).Twice()
	next.On("SearchPlace", "broken").Return(nil, errors.New("boom")).Twice()

	s := NewCachedSearcher(next, setupBadgerCache(t), time.Hour, quietLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		cand, err := s.SearchPlace(ctx, "nowhere")
		assert.NoError(t, err)
		assert.Nil(t, cand)

		_, err = s.SearchPlace(ctx, "broken")
		assert.Error(t, err)
	}
	next.AssertExpectations(t)
}
