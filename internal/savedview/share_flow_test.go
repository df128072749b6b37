package savedview

import (
	"context"
	"testing"

	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/anonto42/spotdrop/backend/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMetadata struct{}

func (stubMetadata) ExtractMetadata(_ context.Context, url string, p resolver.Platform) (*resolver.PostMetadata, error) {
	return &resolver.PostMetadata{URL: url, Platform: p, Title: "Best slice in NYC", AuthorName: "x"}, nil
}

type stubInferer struct{}

func (stubInferer) InferPlaceQuery(context.Context, *resolver.PostMetadata) (string, error) {
	return "Joe's Pizza, NYC", nil
}

type stubPlaces struct{}

func (stubPlaces) SearchPlace(context.Context, string) (*places.Candidate, error) {
	return &places.Candidate{ID: "ChIJabc"}, nil
}

func (stubPlaces) GetPlaceDetails(context.Context, string) (*places.Details, error) {
	return &places.Details{ID: "ChIJabc", Name: "Joe's Pizza", Latitude: 40.7, Longitude: -74.0}, nil
}

type stubTaglines struct{}

func (stubTaglines) GenerateTagline(context.Context, resolver.TaglineContext) (*resolver.Tagline, error) {
	return &resolver.Tagline{Description: "Classic NY slice", Emoji: "🍕"}, nil
}

func TestSharedPostAppearsInSharersUncategorised(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	const sharer = uint(7)

	r := resolver.NewPostResolver(stubMetadata{}, stubInferer{}, stubPlaces{}, stubPlaces{}, stubTaglines{},
		repositories.NewPostgresLocationRepository(s.db), s.posts, s.saved, quietLogger())

	res, err := r.Resolve(ctx, "https://tiktok.com/@x/video/123", sharer)
	require.NoError(t, err)
	assert.True(t, res.Location.IsValidLocation)
	assert.Equal(t, "Joe's Pizza", res.Location.Title)

	view, err := s.aggregator().BuildSavedView(ctx, sharer)
	require.NoError(t, err)

	rows := view.Personal[UncategorisedKey]
	require.Len(t, rows, 1)
	assert.Equal(t, res.Location.ID, rows[0].LocationID)
	assert.Equal(t, "Joe's Pizza", rows[0].Title)
	assert.Equal(t, "Classic NY slice", rows[0].Description)
	assert.Equal(t, "🍕", rows[0].Emoji)
	require.NotNil(t, rows[0].Latitude)
	assert.InDelta(t, 40.7, *rows[0].Latitude, 1e-9)
	assert.InDelta(t, -74.0, *rows[0].Longitude, 1e-9)
	assert.Equal(t, "https://tiktok.com/@x/video/123", rows[0].PostURL)
	assert.False(t, rows[0].Edited)

	var posts int64
	require.NoError(t, s.db.Model(&models.Post{}).Where("location_id = ?", res.Location.ID).Count(&posts).Error)
	assert.Equal(t, int64(1), posts)
}
