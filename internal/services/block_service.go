package services

import (
	"context"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
)

// BlockService maintains each user's block set. Blocking tears down any
// follow edge between the pair in either direction; unblocking never
// restores one.
type BlockService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	notifier *NotificationService
}

// NewBlockService creates a new BlockService. notifier may be nil.
func NewBlockService(users repositories.UserRepository, follows repositories.FollowRepository, notifier *NotificationService) *BlockService {
	return &BlockService{users: users, follows: follows, notifier: notifier}
}

// Block adds target to blocker's block set, removes any follow edge between
// the pair and decrements counts for edges that had been accepted.
func (s *BlockService) Block(ctx context.Context, blockerID, targetID string) error {
	if blockerID == targetID {
		return ErrSelfBlock
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return ErrUserNotFound
		}
		return err
	}

	added, err := s.users.AddBlockedUser(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if !added {
		return ErrAlreadyBlocked
	}

	deleted, err := s.follows.DeleteEdgesBetween(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	for _, edge := range deleted {
		if edge.Status != models.FollowStatusAccepted {
			continue
		}
		if err := s.users.AdjustFollowCounts(ctx, edge.FollowerID, edge.FollowingID, -1); err != nil {
			return err
		}
	}

	s.notifier.Notify(ctx, target, &models.Notification{
		Type:        models.NotificationTypeBlock,
		ActorID:     blockerID,
		RecipientID: targetID,
		TargetID:    blockerID,
		TargetType:  "user",
		Message:     "You have been blocked by a user",
	})
	return nil
}

// Unblock removes target from blocker's block set. Prior follow edges stay
// deleted; the relationship must be re-requested from scratch.
func (s *BlockService) Unblock(ctx context.Context, blockerID, targetID string) error {
	removed, err := s.users.RemoveBlockedUser(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotBlocked
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		// Block-set entries may outlive the target account; nothing to notify.
		return nil
	}
	s.notifier.Notify(ctx, target, &models.Notification{
		Type:        models.NotificationTypeUnblock,
		ActorID:     blockerID,
		RecipientID: targetID,
		TargetID:    blockerID,
		TargetType:  "user",
		Message:     "You have been unblocked by a user",
	})
	return nil
}

// BlockedUsers returns the profiles in the blocker's block set.
func (s *BlockService) BlockedUsers(ctx context.Context, blockerID string) ([]models.UserCompact, error) {
	blocker, err := s.users.GetUserByID(ctx, blockerID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	blocked := make([]models.UserCompact, 0, len(blocker.BlockedUsers))
	for _, id := range blocker.BlockedUsers {
		user, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			continue
		}
		blocked = append(blocked, user.ToCompact())
	}
	return blocked, nil
}
