package repositories

import (
	"context"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedLocationRepository defines the interface for saved location marks
type SavedLocationRepository interface {
	SaveLocation(ctx context.Context, userID, locationID uint) error
	IsLocationSaved(ctx context.Context, userID, locationID uint) (bool, error)
	// GetUncategorised returns the user's saved locations that are not
	// contained in any of the given folders.
	GetUncategorised(ctx context.Context, userID uint, folderIDs []uint) ([]models.SavedLocation, error)
}

// PostgresSavedLocationRepository implements SavedLocationRepository
type PostgresSavedLocationRepository struct {
	db *gorm.DB
}

func NewPostgresSavedLocationRepository(db *gorm.DB) *PostgresSavedLocationRepository {
	return &PostgresSavedLocationRepository{db: db}
}

// SaveLocation is idempotent per (user, location)
func (r *PostgresSavedLocationRepository) SaveLocation(ctx context.Context, userID, locationID uint) error {
	mark := &models.SavedLocation{UserID: userID, LocationID: locationID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Omit("Location").
		Create(mark).Error
}

func (r *PostgresSavedLocationRepository) IsLocationSaved(ctx context.Context, userID, locationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedLocation{}).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresSavedLocationRepository) GetUncategorised(ctx context.Context, userID uint, folderIDs []uint) ([]models.SavedLocation, error) {
	var saved []models.SavedLocation
	q := r.db.WithContext(ctx).Preload("Location").Where("user_id = ?", userID)
	if len(folderIDs) > 0 {
		q = q.Where("location_id NOT IN (?)",
			r.db.Model(&models.FolderLocation{}).Select("location_id").Where("folder_id IN ?", folderIDs),
		)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&saved).Error; err != nil {
		return nil, err
	}
	return saved, nil
}
