package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowStatus is the state of a follow edge.
type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
	FollowStatusRejected FollowStatus = "rejected"
)

// FollowEdge represents a directed follow relationship follower -> following.
// At most one edge exists per ordered pair (unique index); re-requesting
// after a rejection reopens the same document instead of inserting a second.
// Only accepted edges count toward follower/following counts and visibility.
type FollowEdge struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FollowerID  string             `json:"follower_id" bson:"follower_id"`
	FollowingID string             `json:"following_id" bson:"following_id"`
	Status      FollowStatus       `json:"status" bson:"status"`
	RequestedAt time.Time          `json:"requested_at" bson:"requested_at"`
	RespondedAt *time.Time         `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
}

// RespondFollowRequest defines the request body for accepting/rejecting a follow request
type RespondFollowRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
