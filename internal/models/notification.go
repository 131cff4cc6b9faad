package models

import "time"

// Notification types emitted by the follow and block services.
const (
	NotificationTypeFollowRequest = "follow_request"
	NotificationTypeFollowAccept  = "follow_accept"
	NotificationTypeBlock         = "block"
	NotificationTypeUnblock       = "unblock"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     string    `json:"actor_id" gorm:"size:128;index"`
	RecipientID string    `json:"recipient_id" gorm:"size:128;index"`
	TargetID    string    `json:"target_id"`                  // edge ID, user ID, etc.
	TargetType  string    `json:"target_type" gorm:"size:20"` // follow_edge, user
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
