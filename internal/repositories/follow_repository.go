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

// FollowRepository defines the interface for follow-edge operations.
// State transitions are conditional single-document updates keyed on the
// current status, so two concurrent transitions on the same edge cannot
// both win.
type FollowRepository interface {
	InsertEdge(ctx context.Context, edge *models.FollowEdge) error
	GetEdge(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error)
	GetEdgeByID(ctx context.Context, id string) (*models.FollowEdge, error)
	ReopenEdge(ctx context.Context, followerID, followingID string, requestedAt time.Time) (bool, error)
	TransitionEdge(ctx context.Context, id string, from, to models.FollowStatus, respondedAt time.Time) (bool, error)
	DeleteEdge(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error)
	DeleteEdgesBetween(ctx context.Context, userA, userB string) ([]models.FollowEdge, error)
	AcceptedFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	IsAccepted(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error)
	ListFollowing(ctx context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error)
	ListPendingRequests(ctx context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("follow_edges")}
}

// EnsureIndexes creates the unique (follower, following) pair index and the
// listing indexes for the follow_edges collection.
func (r *MongoFollowRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "following_id", Value: 1}, {Key: "status", Value: 1}, {Key: "responded_at", Value: -1}}},
		{Keys: bson.D{{Key: "follower_id", Value: 1}, {Key: "status", Value: 1}, {Key: "responded_at", Value: -1}}},
	})
	return err
}

// InsertEdge inserts a new edge. A violation of the pair uniqueness index
// is reported as ErrDuplicate.
func (r *MongoFollowRepository) InsertEdge(ctx context.Context, edge *models.FollowEdge) error {
	if edge.ID.IsZero() {
		edge.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, edge)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetEdge retrieves the edge for an ordered (follower, following) pair.
func (r *MongoFollowRepository) GetEdge(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.collection.FindOne(ctx, bson.M{"follower_id": followerID, "following_id": followingID}).Decode(&edge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// GetEdgeByID retrieves an edge by its hex document ID.
func (r *MongoFollowRepository) GetEdgeByID(ctx context.Context, id string) (*models.FollowEdge, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid follow edge ID format: %w", err)
	}
	var edge models.FollowEdge
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&edge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// ReopenEdge moves a rejected edge back to pending, refreshing requested_at
// and clearing responded_at. Returns false if the edge is no longer rejected.
func (r *MongoFollowRepository) ReopenEdge(ctx context.Context, followerID, followingID string, requestedAt time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"follower_id": followerID, "following_id": followingID, "status": models.FollowStatusRejected},
		bson.M{
			"$set":   bson.M{"status": models.FollowStatusPending, "requested_at": requestedAt},
			"$unset": bson.M{"responded_at": ""},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// TransitionEdge moves an edge from one status to another. The filter
// includes the expected current status, so of two racing transitions
// exactly one observes ModifiedCount > 0.
func (r *MongoFollowRepository) TransitionEdge(ctx context.Context, id string, from, to models.FollowStatus, respondedAt time.Time) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid follow edge ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "status": from},
		bson.M{"$set": bson.M{"status": to, "responded_at": respondedAt}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// DeleteEdge removes the edge for an ordered pair and returns the deleted
// document so the caller can tell whether it had been accepted.
func (r *MongoFollowRepository) DeleteEdge(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.collection.FindOneAndDelete(ctx,
		bson.M{"follower_id": followerID, "following_id": followingID}).Decode(&edge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// DeleteEdgesBetween removes any edge between the pair in either direction
// and returns the deleted documents.
func (r *MongoFollowRepository) DeleteEdgesBetween(ctx context.Context, userA, userB string) ([]models.FollowEdge, error) {
	var deleted []models.FollowEdge
	for _, pair := range [][2]string{{userA, userB}, {userB, userA}} {
		edge, err := r.DeleteEdge(ctx, pair[0], pair[1])
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return deleted, err
		}
		deleted = append(deleted, *edge)
	}
	return deleted, nil
}

// AcceptedFollowingIDs returns the IDs of users the follower has an
// accepted edge to.
func (r *MongoFollowRepository) AcceptedFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	filter := bson.M{"follower_id": followerID, "status": models.FollowStatusAccepted}
	opts := options.Find().SetProjection(bson.M{"following_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		FollowingID string `bson:"following_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.FollowingID
	}
	return ids, nil
}

// IsAccepted reports whether an accepted edge follower -> following exists.
func (r *MongoFollowRepository) IsAccepted(ctx context.Context, followerID, followingID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"follower_id":  followerID,
		"following_id": followingID,
		"status":       models.FollowStatusAccepted,
	})
	return count > 0, err
}

// ListFollowers returns accepted edges pointing at userID, newest first.
func (r *MongoFollowRepository) ListFollowers(ctx context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	filter := bson.M{"following_id": userID, "status": models.FollowStatusAccepted}
	return r.listEdges(ctx, filter, "responded_at", skip, limit)
}

// ListFollowing returns accepted edges originating from userID, newest first.
func (r *MongoFollowRepository) ListFollowing(ctx context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	filter := bson.M{"follower_id": userID, "status": models.FollowStatusAccepted}
	return r.listEdges(ctx, filter, "responded_at", skip, limit)
}

// ListPendingRequests returns pending edges awaiting userID's response, newest first.
func (r *MongoFollowRepository) ListPendingRequests(ctx context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	filter := bson.M{"following_id": userID, "status": models.FollowStatusPending}
	return r.listEdges(ctx, filter, "requested_at", skip, limit)
}

func (r *MongoFollowRepository) listEdges(ctx context.Context, filter bson.M, sortKey string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: sortKey, Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var edges []models.FollowEdge
	if err = cursor.All(ctx, &edges); err != nil {
		return nil, 0, err
	}
	return edges, total, nil
}
