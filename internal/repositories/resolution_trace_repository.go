package repositories

import (
	"context"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResolutionTraceRepository archives share attempts for later inspection
type ResolutionTraceRepository interface {
	RecordTrace(ctx context.Context, trace *models.ResolutionTrace) error
	GetRecentTracesByUser(ctx context.Context, userID uint, limit int64) ([]models.ResolutionTrace, error)
}

// MongoResolutionTraceRepository implements ResolutionTraceRepository for MongoDB
type MongoResolutionTraceRepository struct {
	collection *mongo.Collection
}

// NewMongoResolutionTraceRepository creates a new MongoResolutionTraceRepository
func NewMongoResolutionTraceRepository(db *mongo.Database) *MongoResolutionTraceRepository {
	return &MongoResolutionTraceRepository{collection: db.Collection("resolution_traces")}
}

// RecordTrace inserts a new trace document
func (r *MongoResolutionTraceRepository) RecordTrace(ctx context.Context, trace *models.ResolutionTrace) error {
	if trace.ID == "" {
		trace.ID = uuid.NewString()
	}
	if trace.CreatedAt.IsZero() {
		trace.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, trace)
	return err
}

// GetRecentTracesByUser returns the newest traces of a user
func (r *MongoResolutionTraceRepository) GetRecentTracesByUser(ctx context.Context, userID uint, limit int64) ([]models.ResolutionTrace, error) {
	var traces []models.ResolutionTrace
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &traces); err != nil {
		return nil, err
	}
	return traces, nil
}
