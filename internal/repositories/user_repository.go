package repositories

import (
	"context"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations.
// Counter and block-set mutations are single atomic document updates;
// callers must never read-modify-write counts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeactivateUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int64) error
	AdjustPostsCount(ctx context.Context, id string, delta int64) error
	AddBlockedUser(ctx context.Context, blockerID, targetID string) (bool, error)
	RemoveBlockedUser(ctx context.Context, blockerID, targetID string) (bool, error)
	BlockerIDs(ctx context.Context, targetID string) ([]string, error)
	PublicUserIDsByReligion(ctx context.Context, religion string) ([]string, error)
	ActiveUserIDs(ctx context.Context, ids []string) ([]string, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the supporting indexes for the users collection.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "religion", Value: 1}, {Key: "is_private", Value: 1}}},
		{Keys: bson.D{{Key: "blocked_users", Value: 1}}},
	})
	return err
}

// CreateUser inserts a new user document keyed by its UID.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetUserByID retrieves a user by UID.
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the mutable profile fields of a user document.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"display_name": user.DisplayName,
			"bio":          user.Bio,
			"avatar_url":   user.AvatarURL,
			"religion":     user.Religion,
			"is_private":   user.IsPrivate,
			"device_token": user.DeviceToken,
			"updated_at":   user.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateUser soft-deletes a user. The document is never removed.
func (r *MongoUserRepository) DeactivateUser(ctx context.Context, id string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchUsers searches active users by username or display name (case-insensitive).
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"username": bson.M{"$regex": query, "$options": "i"}},
			{"display_name": bson.M{"$regex": query, "$options": "i"}},
		},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdjustFollowCounts applies a single follow-edge transition to the
// denormalized counters: following_count on the follower, followers_count
// on the followed user. Both updates are atomic $inc operations.
func (r *MongoUserRepository) AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int64) error {
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": followerID},
		bson.M{"$inc": bson.M{"following_count": delta}}); err != nil {
		return err
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": followingID},
		bson.M{"$inc": bson.M{"followers_count": delta}})
	return err
}

// AdjustPostsCount atomically increments or decrements a user's posts count.
func (r *MongoUserRepository) AdjustPostsCount(ctx context.Context, id string, delta int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"posts_count": delta}})
	return err
}

// AddBlockedUser adds targetID to the blocker's block set. The filter
// excludes documents already containing the target, so a concurrent
// duplicate block is reported as not-added rather than applied twice.
func (r *MongoUserRepository) AddBlockedUser(ctx context.Context, blockerID, targetID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": blockerID, "blocked_users": bson.M{"$ne": targetID}},
		bson.M{"$addToSet": bson.M{"blocked_users": targetID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveBlockedUser removes targetID from the blocker's block set and
// reports whether the target was present.
func (r *MongoUserRepository) RemoveBlockedUser(ctx context.Context, blockerID, targetID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": blockerID, "blocked_users": targetID},
		bson.M{"$pull": bson.M{"blocked_users": targetID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// BlockerIDs returns the IDs of users whose block set contains targetID.
func (r *MongoUserRepository) BlockerIDs(ctx context.Context, targetID string) ([]string, error) {
	return r.findIDs(ctx, bson.M{"blocked_users": targetID})
}

// PublicUserIDsByReligion returns the IDs of active, non-private users with
// the given religion. Private accounts are never discoverable through the
// category fallback.
func (r *MongoUserRepository) PublicUserIDsByReligion(ctx context.Context, religion string) ([]string, error) {
	return r.findIDs(ctx, bson.M{"religion": religion, "is_private": false, "is_active": true})
}

// ActiveUserIDs filters the given IDs down to users that are still active.
func (r *MongoUserRepository) ActiveUserIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.findIDs(ctx, bson.M{"_id": bson.M{"$in": ids}, "is_active": true})
}

func (r *MongoUserRepository) findIDs(ctx context.Context, filter bson.M) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
