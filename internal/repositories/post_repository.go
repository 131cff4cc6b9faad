package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, int64, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []string, skip, limit int64) ([]models.Post, int64, error)
	SoftDeletePost(ctx context.Context, id, authorID string) (bool, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the feed-query index for the posts collection.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.IsActive = true
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID. Soft-deleted posts are not returned.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}
	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "is_active": true}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthor retrieves active posts by a single author, newest first.
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, int64, error) {
	return r.findPosts(ctx, bson.M{"author_id": authorID, "is_active": true}, skip, limit)
}

// GetPostsByAuthors retrieves active posts by any of the given authors,
// newest first. An empty author set yields an empty result.
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []string, skip, limit int64) ([]models.Post, int64, error) {
	if len(authorIDs) == 0 {
		return nil, 0, nil
	}
	return r.findPosts(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}, "is_active": true}, skip, limit)
}

// SoftDeletePost marks the author's post inactive. Returns false when the
// post does not exist, belongs to someone else, or was already deleted.
func (r *MongoPostRepository) SoftDeletePost(ctx context.Context, id, authorID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid post ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "author_id": authorID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
