package repositories

import (
	"context"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveStoriesByAuthors(ctx context.Context, authorIDs []string) ([]models.Story, error)
	DeleteExpiredStories(ctx context.Context) error
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
}

// NewMongoStoryRepository creates a new MongoStoryRepository
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories")}
}

// EnsureIndexes creates the expiry and author-listing indexes for stories.
func (r *MongoStoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "expires_at", Value: -1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	})
	return err
}

// CreateStory creates a new story with a 24 hour expiry window.
func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.IsActive = true
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(24 * time.Hour)
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

// GetActiveStoriesByAuthors returns unexpired stories by the given authors,
// newest first. An empty author set yields an empty result.
func (r *MongoStoryRepository) GetActiveStoriesByAuthors(ctx context.Context, authorIDs []string) ([]models.Story, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"author_id":  bson.M{"$in": authorIDs},
		"is_active":  true,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// DeleteExpiredStories removes stories past their expiry window.
func (r *MongoStoryRepository) DeleteExpiredStories(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	return err
}
