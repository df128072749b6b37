package repositories

import (
	"context"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	LatestByLocationIDs(ctx context.Context, locationIDs []uint) (map[uint]models.Post, error)
	LocationIDsPostedBy(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// LatestByLocationIDs returns the most recent post per location in one query.
// Post ids are monotonic so the highest id is the latest post.
func (r *PostgresPostRepository) LatestByLocationIDs(ctx context.Context, locationIDs []uint) (map[uint]models.Post, error) {
	latest := make(map[uint]models.Post, len(locationIDs))
	if len(locationIDs) == 0 {
		return latest, nil
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Model(&models.Post{}).Select("MAX(id)").Where("location_id IN ?", locationIDs).Group("location_id"),
	).Find(&posts).Error
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		latest[p.LocationID] = p
	}
	return latest, nil
}

// LocationIDsPostedBy returns the distinct locations a user has posted to
func (r *PostgresPostRepository) LocationIDsPostedBy(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("location_id", &ids).Error
	return ids, err
}
