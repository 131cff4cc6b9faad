package services

import (
	"context"
	"log"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
)

// PushSender delivers a push message to a device token. Implemented by
// pkg/firebase; nil when push delivery is not configured.
type PushSender interface {
	SendPush(ctx context.Context, deviceToken, title, body string) error
}

// NotificationService persists notification records and optionally pushes
// them to the recipient's device. Notification delivery is best-effort:
// failures are logged and never propagated to the primary operation.
type NotificationService struct {
	store repositories.NotificationRepository
	push  PushSender
}

// NewNotificationService creates a new NotificationService. push may be nil.
func NewNotificationService(store repositories.NotificationRepository, push PushSender) *NotificationService {
	return &NotificationService{store: store, push: push}
}

// Notify writes a notification record for the recipient and fires a push
// message if a device token is known.
func (s *NotificationService) Notify(ctx context.Context, recipient *models.User, n *models.Notification) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.CreateNotification(n); err != nil {
		log.Printf("failed to create %s notification for %s: %v", n.Type, n.RecipientID, err)
		return
	}
	if s.push != nil && recipient != nil && recipient.DeviceToken != "" {
		if err := s.push.SendPush(ctx, recipient.DeviceToken, "SocialSphere", n.Message); err != nil {
			log.Printf("failed to push %s notification to %s: %v", n.Type, n.RecipientID, err)
		}
	}
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(recipientID string, pager models.Pager) ([]models.Notification, models.PageMeta, error) {
	pager = pager.Normalize()
	notifications, total, err := s.store.GetByRecipientID(recipientID, pager.Page, pager.Limit)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return notifications, models.NewPageMeta(pager, total), nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (s *NotificationService) UnreadCount(recipientID string) (int64, error) {
	return s.store.GetUnreadCount(recipientID)
}

// MarkRead marks one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(notificationID uint, recipientID string) error {
	err := s.store.MarkAsRead(notificationID, recipientID)
	if err == repositories.ErrNotFound {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead marks all of the recipient's notifications as read.
func (s *NotificationService) MarkAllRead(recipientID string) error {
	return s.store.MarkAllAsRead(recipientID)
}
