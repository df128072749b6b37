package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationEditRepository defines the interface for per-user location overlays
type LocationEditRepository interface {
	UpsertEdit(ctx context.Context, edit *models.LocationEdit) error
	MergeEdit(ctx context.Context, edit *models.LocationEdit) error
	GetEdit(ctx context.Context, userID, locationID uint) (*models.LocationEdit, error)
	GetEditsByUser(ctx context.Context, userID uint) ([]models.LocationEdit, error)
	GetEditsByUsersAndLocations(ctx context.Context, userIDs, locationIDs []uint) ([]models.LocationEdit, error)
}

// PostgresLocationEditRepository implements LocationEditRepository for PostgreSQL
type PostgresLocationEditRepository struct {
	db *gorm.DB
}

// NewPostgresLocationEditRepository creates a new PostgresLocationEditRepository
func NewPostgresLocationEditRepository(db *gorm.DB) *PostgresLocationEditRepository {
	return &PostgresLocationEditRepository{db: db}
}

// UpsertEdit replaces the overlay for (edit.UserID, edit.LocationID)
func (r *PostgresLocationEditRepository) UpsertEdit(ctx context.Context, edit *models.LocationEdit) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "location_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"google_place_id", "title", "description", "emoji",
				"website_url", "phone_number", "address", "coordinates", "last_updated",
			}),
		}).
		Create(edit).Error
}

// MergeEdit writes the non-nil fields of edit over the stored overlay in one
// statement, so concurrent partial edits by the same user do not drop each other's fields.
func (r *PostgresLocationEditRepository) MergeEdit(ctx context.Context, edit *models.LocationEdit) error {
	keep := func(col string) clause.Expr {
		return gorm.Expr(fmt.Sprintf("COALESCE(excluded.%[1]s, location_edits.%[1]s)", col))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"google_place_id": keep("google_place_id"),
				"title":           keep("title"),
				"description":     keep("description"),
				"emoji":           keep("emoji"),
				"website_url":     keep("website_url"),
				"phone_number":    keep("phone_number"),
				"address":         keep("address"),
				"coordinates":     keep("coordinates"),
				"last_updated":    gorm.Expr("excluded.last_updated"),
			}),
		}).
		Create(edit).Error
}

func (r *PostgresLocationEditRepository) GetEdit(ctx context.Context, userID, locationID uint) (*models.LocationEdit, error) {
	var edit models.LocationEdit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		First(&edit).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &edit, nil
}

func (r *PostgresLocationEditRepository) GetEditsByUser(ctx context.Context, userID uint) ([]models.LocationEdit, error) {
	var edits []models.LocationEdit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&edits).Error; err != nil {
		return nil, err
	}
	return edits, nil
}

// GetEditsByUsersAndLocations fetches every edit made by any of userIDs on any of locationIDs
func (r *PostgresLocationEditRepository) GetEditsByUsersAndLocations(ctx context.Context, userIDs, locationIDs []uint) ([]models.LocationEdit, error) {
	var edits []models.LocationEdit
	if len(userIDs) == 0 || len(locationIDs) == 0 {
		return edits, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND location_id IN ?", userIDs, locationIDs).
		Find(&edits).Error
	if err != nil {
		return nil, err
	}
	return edits, nil
}
