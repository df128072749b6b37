package repositories

import (
	"context"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FolderRepository defines the folder reads the saved view needs, plus the
// minimal writes used by folder management.
type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *models.Folder) error
	AddLocation(ctx context.Context, folderID, locationID uint) error
	AddOwner(ctx context.Context, folderID, userID uint) error
	AddFollower(ctx context.Context, folderID, userID uint) error

	GetCreatedFolderIDs(ctx context.Context, userID uint) ([]uint, error)
	GetCoOwnedFolderIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFollowedFolderIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFoldersByIDs(ctx context.Context, folderIDs []uint) ([]models.Folder, error)
	GetOwnerIDsByFolderIDs(ctx context.Context, folderIDs []uint) (map[uint][]uint, error)
	GetLocationsByFolderIDs(ctx context.Context, folderIDs []uint) ([]models.FolderLocation, error)
	IsLocationVisibleTo(ctx context.Context, userID, locationID uint) (bool, error)
}

// PostgresFolderRepository implements FolderRepository for PostgreSQL
type PostgresFolderRepository struct {
	db *gorm.DB
}

// NewPostgresFolderRepository creates a new PostgresFolderRepository
func NewPostgresFolderRepository(db *gorm.DB) *PostgresFolderRepository {
	return &PostgresFolderRepository{db: db}
}

// CreateFolder creates the folder and registers its creator as the first owner
func (r *PostgresFolderRepository) CreateFolder(ctx context.Context, folder *models.Folder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(folder).Error; err != nil {
			return err
		}
		if folder.CreatorID == nil {
			return nil
		}
		return tx.Create(&models.FolderOwner{FolderID: folder.ID, UserID: *folder.CreatorID}).Error
	})
}

func (r *PostgresFolderRepository) AddLocation(ctx context.Context, folderID, locationID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Location").
		Create(&models.FolderLocation{FolderID: folderID, LocationID: locationID}).Error
}

func (r *PostgresFolderRepository) AddOwner(ctx context.Context, folderID, userID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.FolderOwner{FolderID: folderID, UserID: userID}).Error
}

func (r *PostgresFolderRepository) AddFollower(ctx context.Context, folderID, userID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.FolderFollower{FolderID: folderID, UserID: userID}).Error
}

func (r *PostgresFolderRepository) GetCreatedFolderIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Folder{}).
		Where("creator_id = ?", userID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// GetCoOwnedFolderIDs returns folders the user co-owns but did not create
func (r *PostgresFolderRepository) GetCoOwnedFolderIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.FolderOwner{}).
		Joins("JOIN folders ON folders.id = folder_owners.folder_id").
		Where("folder_owners.user_id = ? AND (folders.creator_id IS NULL OR folders.creator_id <> ?)", userID, userID).
		Order("folder_owners.folder_id").
		Pluck("folder_owners.folder_id", &ids).Error
	return ids, err
}

func (r *PostgresFolderRepository) GetFollowedFolderIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.FolderFollower{}).
		Where("user_id = ?", userID).
		Order("folder_id").
		Pluck("folder_id", &ids).Error
	return ids, err
}

func (r *PostgresFolderRepository) GetFoldersByIDs(ctx context.Context, folderIDs []uint) ([]models.Folder, error) {
	var folders []models.Folder
	if len(folderIDs) == 0 {
		return folders, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", folderIDs).Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *PostgresFolderRepository) GetOwnerIDsByFolderIDs(ctx context.Context, folderIDs []uint) (map[uint][]uint, error) {
	owners := make(map[uint][]uint, len(folderIDs))
	if len(folderIDs) == 0 {
		return owners, nil
	}

	var rows []models.FolderOwner
	if err := r.db.WithContext(ctx).Where("folder_id IN ?", folderIDs).Order("user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		owners[row.FolderID] = append(owners[row.FolderID], row.UserID)
	}
	return owners, nil
}

// GetLocationsByFolderIDs returns junction rows with their canonical location loaded
func (r *PostgresFolderRepository) GetLocationsByFolderIDs(ctx context.Context, folderIDs []uint) ([]models.FolderLocation, error) {
	var rows []models.FolderLocation
	if len(folderIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Preload("Location").
		Where("folder_id IN ?", folderIDs).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IsLocationVisibleTo reports whether the location is saved by the user or sits
// in a folder the user created, co-owns or follows.
func (r *PostgresFolderRepository) IsLocationVisibleTo(ctx context.Context, userID, locationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedLocation{}).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Count(&count).Error
	if err != nil || count > 0 {
		return count > 0, err
	}

	err = r.db.WithContext(ctx).Model(&models.FolderLocation{}).
		Where("location_id = ?", locationID).
		Where("(folder_id IN (?) OR folder_id IN (?) OR folder_id IN (?))",
			r.db.Model(&models.Folder{}).Select("id").Where("creator_id = ?", userID),
			r.db.Model(&models.FolderOwner{}).Select("folder_id").Where("user_id = ?", userID),
			r.db.Model(&models.FolderFollower{}).Select("folder_id").Where("user_id = ?", userID),
		).
		Count(&count).Error
	return count > 0, err
}
