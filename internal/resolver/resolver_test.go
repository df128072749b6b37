package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fakeMetadata struct {
	meta *PostMetadata
	err  error
}

func (f *fakeMetadata) ExtractMetadata(_ context.Context, url string, platform Platform) (*PostMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := *f.meta
	m.URL = url
	m.Platform = platform
	return &m, nil
}

type fakeInferer struct {
	query string
	err   error
}

func (f *fakeInferer) InferPlaceQuery(context.Context, *PostMetadata) (string, error) {
	return f.query, f.err
}

type fakeSearcher struct {
	candidate *places.Candidate
	err       error
	queries   []string
}

func (f *fakeSearcher) SearchPlace(_ context.Context, query string) (*places.Candidate, error) {
	f.queries = append(f.queries, query)
	return f.candidate, f.err
}

type fakeDetailer struct {
	details *places.Details
	err     error
	calls   int
}

func (f *fakeDetailer) GetPlaceDetails(context.Context, string) (*places.Details, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d := *f.details
	return &d, nil
}

type fakeTaglines struct {
	withDetails  *Tagline
	metadataOnly *Tagline
	detailsErr   error
	metadataErr  error
	calls        int
}

func (f *fakeTaglines) GenerateTagline(_ context.Context, in TaglineContext) (*Tagline, error) {
	f.calls++
	if in.Details != nil {
		return f.withDetails, f.detailsErr
	}
	return f.metadataOnly, f.metadataErr
}

type fakeTraces struct {
	traces []models.ResolutionTrace
}

func (f *fakeTraces) RecordTrace(_ context.Context, trace *models.ResolutionTrace) error {
	f.traces = append(f.traces, *trace)
	return nil
}

func (f *fakeTraces) GetRecentTracesByUser(context.Context, uint, int64) ([]models.ResolutionTrace, error) {
	return f.traces, nil
}

func fixtureDetails() *places.Details {
	return &places.Details{
		ID:        "ChIJabc",
		Name:      "Joe's Pizza",
		Latitude:  40.7,
		Longitude: -74.0,
		Address:   "7 Carmine St, New York",
		Phone:     "+1 212-366-1182",
		Website:   "https://joespizzanyc.com",
	}
}

type fixture struct {
	db       *gorm.DB
	metadata *fakeMetadata
	inferer  *fakeInferer
	searcher *fakeSearcher
	detailer *fakeDetailer
	taglines *fakeTaglines
	traces   *fakeTraces
	resolver *PostResolver
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	f := &fixture{
		db: db,
		metadata: &fakeMetadata{meta: &PostMetadata{
			Title:       "Best slice in NYC",
			Description: "Grabbing a slice at Joe's",
			AuthorName:  "x",
		}},
		inferer:  &fakeInferer{query: "Joe's Pizza, NYC"},
		searcher: &fakeSearcher{candidate: &places.Candidate{ID: "ChIJabc"}},
		detailer: &fakeDetailer{details: fixtureDetails()},
		taglines: &fakeTaglines{
			withDetails:  &Tagline{Description: "Classic NY slice", Emoji: "🍕"},
			metadataOnly: &Tagline{Description: "A slice someone loved", Emoji: "🍴"},
		},
		traces: &fakeTraces{},
	}
	f.resolver = NewPostResolver(
		f.metadata, f.inferer, f.searcher, f.detailer, f.taglines,
		repositories.NewPostgresLocationRepository(db),
		repositories.NewPostgresPostRepository(db),
		repositories.NewPostgresSavedLocationRepository(db),
		quietLogger(),
	).WithTraceArchive(f.traces)
	return f
}

func TestResolveCreatesLocationForNewPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.resolver.Resolve(ctx, "https://tiktok.com/@x/video/123", 7)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeCreated, res.Outcome)
	assert.Equal(t, []string{"Joe's Pizza, NYC"}, f.searcher.queries)

	loc, err := repositories.NewPostgresLocationRepository(f.db).GetByID(ctx, res.Location.ID)
	require.NoError(t, err)
	assert.True(t, loc.IsValidLocation)
	assert.False(t, loc.Recommendable)
	assert.Equal(t, "Joe's Pizza", loc.Title)
	assert.Equal(t, "Classic NY slice", loc.Description)
	assert.Equal(t, "🍕", loc.Emoji)
	require.NotNil(t, loc.GooglePlaceID)
	assert.Equal(t, "ChIJabc", *loc.GooglePlaceID)
	assert.InDelta(t, 40.7, loc.Coordinates.Lat(), 1e-9)
	assert.InDelta(t, -74.0, loc.Coordinates.Lng(), 1e-9)
	assert.Equal(t, "https://joespizzanyc.com", loc.WebsiteURL)

	assert.Equal(t, loc.ID, res.Post.LocationID)
	require.NotNil(t, res.Post.UserID)
	assert.Equal(t, uint(7), *res.Post.UserID)
	assert.Equal(t, "tiktok", res.Post.Platform)

	saved, err := repositories.NewPostgresSavedLocationRepository(f.db).IsLocationSaved(ctx, 7, loc.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	require.Len(t, f.traces.traces, 1)
	assert.Equal(t, models.OutcomeCreated, f.traces.traces[0].Outcome)
	assert.Equal(t, "ChIJabc", f.traces.traces[0].CandidateID)
}

func TestResolveDeduplicatesByPlaceID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, "https://tiktok.com/@x/video/123", 7)
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, "https://www.instagram.com/p/abc/", 8)
	require.NoError(t, err)

	assert.Equal(t, first.Location.ID, second.Location.ID)
	assert.Equal(t, models.OutcomeMatched, second.Outcome)
	assert.NotEqual(t, first.Post.ID, second.Post.ID)

	// the fast path skips details and tagline calls
	assert.Equal(t, 1, f.detailer.calls)
	assert.Equal(t, 1, f.taglines.calls)

	var locations, posts int64
	require.NoError(t, f.db.Model(&models.Location{}).Count(&locations).Error)
	require.NoError(t, f.db.Model(&models.Post{}).Where("location_id = ?", first.Location.ID).Count(&posts).Error)
	assert.Equal(t, int64(1), locations)
	assert.Equal(t, int64(2), posts)

	saved, err := repositories.NewPostgresSavedLocationRepository(f.db).IsLocationSaved(ctx, 8, first.Location.ID)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestResolveFallsBackOnAnyFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		breakStep func(*fixture)
		title     string
		desc      string
		emoji     string
	}{
		{
			name:      "metadata fails",
			breakStep: func(f *fixture) { f.metadata.err = boom },
			title:     "tiktok.com",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name:      "inference returns empty",
			breakStep: func(f *fixture) { f.inferer.query = "" },
			title:     "Best slice in NYC",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name:      "inference fails",
			breakStep: func(f *fixture) { f.inferer.err = boom },
			title:     "Best slice in NYC",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name:      "search returns no candidate",
			breakStep: func(f *fixture) { f.searcher.candidate = nil },
			title:     "Best slice in NYC",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name:      "search fails",
			breakStep: func(f *fixture) { f.searcher.err = boom },
			title:     "Best slice in NYC",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name:      "details fail",
			breakStep: func(f *fixture) { f.detailer.err = boom },
			title:     "Best slice in NYC",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name:      "details tagline fails",
			breakStep: func(f *fixture) { f.taglines.detailsErr = boom },
			title:     "Best slice in NYC",
			desc:      "A slice someone loved",
			emoji:     "🍴",
		},
		{
			name: "every tagline fails",
			breakStep: func(f *fixture) {
				f.taglines.detailsErr = boom
				f.taglines.metadataErr = boom
			},
			title: "Best slice in NYC",
			desc:  "Grabbing a slice at Joe's",
			emoji: "📍",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.breakStep(f)
			ctx := context.Background()

			res, err := f.resolver.Resolve(ctx, "https://tiktok.com/@x/video/123", 7)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeFallback, res.Outcome)

			loc, err := repositories.NewPostgresLocationRepository(f.db).GetByID(ctx, res.Post.LocationID)
			require.NoError(t, err)
			assert.False(t, loc.IsValidLocation)
			assert.False(t, loc.Recommendable)
			assert.Nil(t, loc.GooglePlaceID)
			assert.True(t, loc.Coordinates.Valid)
			assert.Equal(t, 0.0, loc.Coordinates.Lat())
			assert.Equal(t, 0.0, loc.Coordinates.Lng())
			assert.Equal(t, tt.title, loc.Title)
			assert.Equal(t, tt.desc, loc.Description)
			assert.Equal(t, tt.emoji, loc.Emoji)

			saved, err := repositories.NewPostgresSavedLocationRepository(f.db).IsLocationSaved(ctx, 7, loc.ID)
			require.NoError(t, err)
			assert.True(t, saved)

			require.Len(t, f.traces.traces, 1)
			assert.NotEmpty(t, f.traces.traces[0].Reason)
		})
	}
}

func TestResolveFallbackNeverDeduplicates(t *testing.T) {
	f := newFixture(t)
	f.inferer.query = ""
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, "https://example.com/a", 7)
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, "https://example.com/a", 7)
	require.NoError(t, err)

	assert.NotEqual(t, first.Location.ID, second.Location.ID)
	assert.Equal(t, "webpage", second.Post.Platform)
}

func TestResolveRejectsUnrecognizedPlatform(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), "ftp://files.example.com/x", 7)

	assert.ErrorIs(t, err, ErrUnrecognizedPlatform)
	var posts int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&posts).Error)
	assert.Zero(t, posts)
	assert.Empty(t, f.traces.traces)
}

type failingPosts struct {
	repositories.PostRepository
}

func (failingPosts) CreatePost(context.Context, *models.Post) error {
	return errors.New("disk full")
}

func TestResolveSurfacesStorageFailure(t *testing.T) {
	f := newFixture(t)
	r := NewPostResolver(
		f.metadata, f.inferer, f.searcher, f.detailer, f.taglines,
		repositories.NewPostgresLocationRepository(f.db),
		failingPosts{},
		repositories.NewPostgresSavedLocationRepository(f.db),
		quietLogger(),
	)

	_, err := r.Resolve(context.Background(), "https://tiktok.com/@x/video/123", 7)

	assert.ErrorIs(t, err, ErrStorageFailure)
}

func TestResolveInternalPageFallsBackWithoutPageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>INTERNAL-ADMIN-SECRET</title>
<meta name="description" content="db password hunter2"></head></html>`))
	}))
	defer srv.Close()

	f := newFixture(t)
	extractor := NewMetadataExtractor(nil, NewOpenGraphFetcher(time.Second, quietLogger()), nil, quietLogger())
	f.resolver = NewPostResolver(
		extractor, f.inferer, f.searcher, f.detailer, f.taglines,
		repositories.NewPostgresLocationRepository(f.db),
		repositories.NewPostgresPostRepository(f.db),
		repositories.NewPostgresSavedLocationRepository(f.db),
		quietLogger(),
	).WithTraceArchive(f.traces)
	ctx := context.Background()

	res, err := f.resolver.Resolve(ctx, srv.URL+"/admin", 7)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeFallback, res.Outcome)
	assert.Empty(t, f.searcher.queries)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	loc, err := repositories.NewPostgresLocationRepository(f.db).GetByID(ctx, res.Post.LocationID)
	require.NoError(t, err)
	assert.Equal(t, u.Hostname(), loc.Title)
	assert.NotContains(t, loc.Title, "INTERNAL-ADMIN-SECRET")
	assert.NotContains(t, loc.Description, "hunter2")
	assert.Nil(t, loc.GooglePlaceID)

	require.Len(t, f.traces.traces, 1)
	assert.Contains(t, f.traces.traces[0].Reason, "not public")
}
