package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story represents an ephemeral content item stored in MongoDB. Stories
// follow the same visibility rules as posts and expire 24 hours after
// creation; expired documents are excluded by query and swept lazily.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  string             `json:"author_id" bson:"author_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	Caption   string             `json:"caption,omitempty" bson:"caption,omitempty"`
	IsActive  bool               `json:"is_active" bson:"is_active"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// CreateStoryRequest defines the request body for creating a new story
type CreateStoryRequest struct {
	MediaURL string `json:"media_url" validate:"required,url"`
	Caption  string `json:"caption,omitempty" validate:"omitempty,max=140"`
}
