package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

const fallbackEmoji = "📍"

// MetadataSource extracts normalized metadata for a post URL
type MetadataSource interface {
	ExtractMetadata(ctx context.Context, url string, platform Platform) (*PostMetadata, error)
}

// PlaceSearcher returns the top candidate for a text query, or nil when nothing matched
type PlaceSearcher interface {
	SearchPlace(ctx context.Context, query string) (*places.Candidate, error)
}

// PlaceDetailer fetches the canonical description of a place
type PlaceDetailer interface {
	GetPlaceDetails(ctx context.Context, placeID string) (*places.Details, error)
}

// Result is what a share attempt produced
type Result struct {
	Post     models.Post
	Location models.Location
	Outcome  string
}

// PostResolver turns shared URLs into posts attached to canonical locations
type PostResolver struct {
	metadata  MetadataSource
	inferer   PlaceNameInferer
	searcher  PlaceSearcher
	detailer  PlaceDetailer
	taglines  TaglineGenerator
	locations repositories.LocationRepository
	posts     repositories.PostRepository
	saved     repositories.SavedLocationRepository
	traces    repositories.ResolutionTraceRepository
	log       logrus.FieldLogger
}

// NewPostResolver creates a new PostResolver
func NewPostResolver(
	metadata MetadataSource,
	inferer PlaceNameInferer,
	searcher PlaceSearcher,
	detailer PlaceDetailer,
	taglines TaglineGenerator,
	locations repositories.LocationRepository,
	posts repositories.PostRepository,
	saved repositories.SavedLocationRepository,
	logger logrus.FieldLogger,
) *PostResolver {
	return &PostResolver{
		metadata:  metadata,
		inferer:   inferer,
		searcher:  searcher,
		detailer:  detailer,
		taglines:  taglines,
		locations: locations,
		posts:     posts,
		saved:     saved,
		log:       logger.WithField("component", "resolver"),
	}
}

// WithTraceArchive records every share attempt in traces
func (r *PostResolver) WithTraceArchive(traces repositories.ResolutionTraceRepository) *PostResolver {
	r.traces = traces
	return r
}

type resolutionState int

const (
	unresolved resolutionState = iota
	matched
	discovered
)

// resolution is the outcome of trying to identify a real place
type resolution struct {
	state       resolutionState
	reason      string
	query       string
	candidateID string
	existing    *models.Location
	details     *places.Details
	tagline     *Tagline
}

func (res resolution) fail(format string, args ...interface{}) resolution {
	res.state = unresolved
	res.reason = fmt.Sprintf(format, args...)
	return res
}

// Resolve attaches a new post for url to a location and marks it saved for userID.
// Only an unrecognized platform or a failed final write is returned as an error.
func (r *PostResolver) Resolve(ctx context.Context, url string, userID uint) (*Result, error) {
	platform, err := DetectPlatform(url)
	if err != nil {
		return nil, err
	}
	log := r.log.WithFields(logrus.Fields{"url": url, "platform": platform, "user_id": userID})

	var res resolution
	meta, err := r.metadata.ExtractMetadata(ctx, url, platform)
	if err != nil {
		meta = placeholderMetadata(url, platform)
		res = res.fail("metadata extraction failed: %v", err)
	} else {
		res = r.identify(ctx, meta)
	}

	var (
		loc     *models.Location
		outcome string
	)
	switch res.state {
	case matched:
		loc, outcome = res.existing, models.OutcomeMatched
	case discovered:
		var created bool
		loc, created, err = r.locations.CreateOrGet(ctx, newDiscoveredLocation(res.details, res.tagline))
		outcome = models.OutcomeCreated
		if err == nil && !created {
			// another share of the same place won the insert
			outcome = models.OutcomeMatched
		}
	default:
		log.WithField("reason", res.reason).Warn("Place not identified, creating fallback location")
		loc, err = r.createFallbackLocation(ctx, meta)
		outcome = models.OutcomeFallback
	}
	if err != nil {
		return nil, fmt.Errorf("%w: location: %v", ErrStorageFailure, err)
	}

	post := models.Post{
		LocationID: loc.ID,
		UserID:     &userID,
		URL:        url,
		Platform:   string(platform),
	}
	if err := r.posts.CreatePost(ctx, &post); err != nil {
		return nil, fmt.Errorf("%w: post: %v", ErrStorageFailure, err)
	}
	if err := r.saved.SaveLocation(ctx, userID, loc.ID); err != nil {
		return nil, fmt.Errorf("%w: saved mark: %v", ErrStorageFailure, err)
	}

	log.WithFields(logrus.Fields{"location_id": loc.ID, "post_id": post.ID, "outcome": outcome}).Info("Post resolved")
	r.recordTrace(ctx, meta, res, outcome, userID, loc.ID, post.ID)

	return &Result{Post: post, Location: *loc, Outcome: outcome}, nil
}

// identify runs the lookup chain. Any failure stops the chain as unresolved.
func (r *PostResolver) identify(ctx context.Context, meta *PostMetadata) resolution {
	var res resolution

	query, err := r.inferer.InferPlaceQuery(ctx, meta)
	if err != nil {
		return res.fail("place inference failed: %v", err)
	}
	if query == "" {
		return res.fail("no confident place guess")
	}
	res.query = query

	candidate, err := r.searcher.SearchPlace(ctx, query)
	if err != nil {
		return res.fail("place search failed: %v", err)
	}
	if candidate == nil || candidate.ID == "" {
		return res.fail("place search returned no candidate")
	}
	res.candidateID = candidate.ID

	existing, err := r.locations.GetByPlaceID(ctx, candidate.ID)
	switch {
	case err == nil:
		res.state = matched
		res.existing = existing
		return res
	case !errors.Is(err, repositories.ErrNotFound):
		return res.fail("location lookup failed: %v", err)
	}

	details, err := r.detailer.GetPlaceDetails(ctx, candidate.ID)
	if err != nil {
		return res.fail("place details failed: %v", err)
	}
	if details.ID == "" {
		details.ID = candidate.ID
	}

	tagline, err := r.taglines.GenerateTagline(ctx, TaglineContext{Metadata: meta, Details: details})
	if err != nil {
		return res.fail("tagline generation failed: %v", err)
	}

	res.state = discovered
	res.details = details
	res.tagline = tagline
	return res
}

func newDiscoveredLocation(details *places.Details, tagline *Tagline) *models.Location {
	placeID := details.ID
	return &models.Location{
		GooglePlaceID:   &placeID,
		Title:           details.Name,
		Description:     tagline.Description,
		Emoji:           tagline.Emoji,
		Coordinates:     models.NewPoint(details.Latitude, details.Longitude),
		IsValidLocation: true,
		WebsiteURL:      details.Website,
		PhoneNumber:     details.Phone,
		Address:         details.Address,
	}
}

// createFallbackLocation is the only place unresolved locations are built
func (r *PostResolver) createFallbackLocation(ctx context.Context, meta *PostMetadata) (*models.Location, error) {
	description, emoji := meta.Description, fallbackEmoji
	tagline, err := r.taglines.GenerateTagline(ctx, TaglineContext{Metadata: meta})
	if err != nil {
		r.log.WithError(err).WithField("url", meta.URL).Warn("Fallback tagline failed, using post description")
	} else {
		description, emoji = tagline.Description, tagline.Emoji
	}

	title := meta.Title
	if title == "" {
		title = placeholderMetadata(meta.URL, meta.Platform).Title
	}

	loc, _, err := r.locations.CreateOrGet(ctx, &models.Location{
		Title:           title,
		Description:     description,
		Emoji:           emoji,
		Coordinates:     models.NewPoint(0, 0),
		IsValidLocation: false,
		Recommendable:   false,
	})
	return loc, err
}

func (r *PostResolver) recordTrace(ctx context.Context, meta *PostMetadata, res resolution, outcome string, userID, locationID, postID uint) {
	if r.traces == nil {
		return
	}
	trace := &models.ResolutionTrace{
		URL:          meta.URL,
		Platform:     string(meta.Platform),
		UserID:       userID,
		Title:        meta.Title,
		AuthorName:   meta.AuthorName,
		ThumbnailURL: meta.ThumbnailURL,
		LocationHint: meta.LocationHint,
		Query:        res.query,
		CandidateID:  res.candidateID,
		Outcome:      outcome,
		Reason:       res.reason,
		LocationID:   locationID,
		PostID:       postID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.traces.RecordTrace(ctx, trace); err != nil {
		r.log.WithError(err).WithField("post_id", postID).Warn("Failed to archive resolution trace")
	}
}
