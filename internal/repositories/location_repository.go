package repositories

import (
	"context"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepository defines the interface for canonical location data operations
type LocationRepository interface {
	// CreateOrGet inserts loc unless a location with the same place id exists.
	// It returns the stored row and whether it was created by this call.
	CreateOrGet(ctx context.Context, loc *models.Location) (*models.Location, bool, error)
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	GetByPlaceID(ctx context.Context, placeID string) (*models.Location, error)
	ListRecommendable(ctx context.Context, excludeIDs []uint) ([]models.Location, error)
}

// PostgresLocationRepository implements LocationRepository for PostgreSQL
type PostgresLocationRepository struct {
	db *gorm.DB
}

// NewPostgresLocationRepository creates a new PostgresLocationRepository
func NewPostgresLocationRepository(db *gorm.DB) *PostgresLocationRepository {
	return &PostgresLocationRepository{db: db}
}

// CreateOrGet relies on the unique index on google_place_id so concurrent
// shares of the same place converge on one row.
func (r *PostgresLocationRepository) CreateOrGet(ctx context.Context, loc *models.Location) (*models.Location, bool, error) {
	if loc.GooglePlaceID == nil {
		if err := r.db.WithContext(ctx).Create(loc).Error; err != nil {
			return nil, false, err
		}
		return loc, true, nil
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_place_id"}},
			DoNothing: true,
		}).
		Create(loc)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return loc, true, nil
	}

	existing, err := r.GetByPlaceID(ctx, *loc.GooglePlaceID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID retrieves a location by ID
func (r *PostgresLocationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// GetByPlaceID retrieves a location by its external place identifier
func (r *PostgresLocationRepository) GetByPlaceID(ctx context.Context, placeID string) (*models.Location, error) {
	var loc models.Location
	if err := r.db.WithContext(ctx).Where("google_place_id = ?", placeID).First(&loc).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// ListRecommendable returns valid, recommendable locations not in excludeIDs
func (r *PostgresLocationRepository) ListRecommendable(ctx context.Context, excludeIDs []uint) ([]models.Location, error) {
	var locs []models.Location
	q := r.db.WithContext(ctx).Where("recommendable = ? AND is_valid_location = ?", true, true)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if err := q.Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}
