package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a user document stored in MongoDB, keyed by Firebase UID.
// Follower/following/post counts are denormalized and maintained atomically
// alongside the edge and post mutations that change them.
type User struct {
	ID             string    `json:"id" bson:"_id"` // Firebase UID
	Username       string    `json:"username" bson:"username"`
	DisplayName    string    `json:"display_name" bson:"display_name"`
	Email          string    `json:"email" bson:"email"`
	Bio            string    `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Religion       string    `json:"religion,omitempty" bson:"religion,omitempty"`
	IsPrivate      bool      `json:"is_private" bson:"is_private"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	DeviceToken    string    `json:"-" bson:"device_token,omitempty"` // FCM registration token
	BlockedUsers   []string  `json:"-" bson:"blocked_users,omitempty"`
	FollowersCount int64     `json:"followers_count" bson:"followers_count"`
	FollowingCount int64     `json:"following_count" bson:"following_count"`
	PostsCount     int64     `json:"posts_count" bson:"posts_count"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// HasBlocked reports whether the user's block set contains the given user ID.
func (u *User) HasBlocked(userID string) bool {
	for _, id := range u.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// UserCompact is the author card embedded in feed and list responses.
type UserCompact struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

// ToCompact converts a full user document into its compact representation.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsPrivate:   u.IsPrivate,
	}
}

// RegisterUserRequest defines the request body for registering a user
type RegisterUserRequest struct {
	FirebaseUID string `json:"firebase_uid" validate:"required"`
	Username    string `json:"username" validate:"required,min=3,max=30"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Religion    string `json:"religion,omitempty" validate:"omitempty,max=50"`
	IsPrivate   bool   `json:"is_private"`
	DeviceToken string `json:"device_token,omitempty"`
}

// UpdateUserRequest defines the request body for updating a user profile
type UpdateUserRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=2,max=50"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=160"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Religion    string `json:"religion,omitempty" validate:"omitempty,max=50"`
	IsPrivate   *bool  `json:"is_private,omitempty"`
	DeviceToken string `json:"device_token,omitempty"`
}

// FirebaseLoginRequest defines the request body for exchanging a Firebase ID
// token for a local session token.
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
