package services

import (
	"context"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
)

// FollowService owns the follow-edge state machine and is the sole writer
// of follower/following counts. Counter mutations happen only after the
// conditional edge transition has won, so concurrent transitions on the
// same pair cannot double-count.
type FollowService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	notifier *NotificationService
}

// NewFollowService creates a new FollowService. notifier may be nil.
func NewFollowService(users repositories.UserRepository, follows repositories.FollowRepository, notifier *NotificationService) *FollowService {
	return &FollowService{users: users, follows: follows, notifier: notifier}
}

// SendRequest creates a pending follow request follower -> target. If a
// rejected edge exists for the pair it is reopened instead of duplicated.
func (s *FollowService) SendRequest(ctx context.Context, followerID, targetID string) (*models.FollowEdge, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.follows.GetEdge(ctx, followerID, targetID)
	if err != nil && err != repositories.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FollowStatusAccepted:
			return nil, ErrAlreadyFollowing
		case models.FollowStatusPending:
			return nil, ErrDuplicateRequest
		case models.FollowStatusRejected:
			now := time.Now()
			reopened, err := s.follows.ReopenEdge(ctx, followerID, targetID, now)
			if err != nil {
				return nil, err
			}
			if !reopened {
				// Lost a race against another transition on this edge.
				return nil, ErrDuplicateRequest
			}
			existing.Status = models.FollowStatusPending
			existing.RequestedAt = now
			existing.RespondedAt = nil
			s.notifyRequest(ctx, followerID, target, existing)
			return existing, nil
		}
	}

	edge := &models.FollowEdge{
		FollowerID:  followerID,
		FollowingID: targetID,
		Status:      models.FollowStatusPending,
		RequestedAt: time.Now(),
	}
	if err := s.follows.InsertEdge(ctx, edge); err != nil {
		if err == repositories.ErrDuplicate {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}
	s.notifyRequest(ctx, followerID, target, edge)
	return edge, nil
}

// Respond accepts or rejects a pending follow request. Only the user the
// edge points at may respond. Of two concurrent responses exactly one wins;
// the loser gets ErrInvalidState and no counts move.
func (s *FollowService) Respond(ctx context.Context, edgeID, responderID string, accept bool) (*models.FollowEdge, error) {
	edge, err := s.follows.GetEdgeByID(ctx, edgeID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrEdgeNotFound
		}
		return nil, err
	}
	if edge.FollowingID != responderID {
		return nil, ErrNotAuthorized
	}

	to := models.FollowStatusRejected
	if accept {
		to = models.FollowStatusAccepted
	}
	now := time.Now()
	won, err := s.follows.TransitionEdge(ctx, edgeID, models.FollowStatusPending, to, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrInvalidState
	}

	edge.Status = to
	edge.RespondedAt = &now

	if accept {
		if err := s.users.AdjustFollowCounts(ctx, edge.FollowerID, edge.FollowingID, 1); err != nil {
			return nil, err
		}
		if follower, ferr := s.users.GetUserByID(ctx, edge.FollowerID); ferr == nil {
			responder, _ := s.users.GetUserByID(ctx, responderID)
			name := responderID
			if responder != nil {
				name = responder.DisplayName
			}
			s.notifier.Notify(ctx, follower, &models.Notification{
				Type:        models.NotificationTypeFollowAccept,
				ActorID:     responderID,
				RecipientID: edge.FollowerID,
				TargetID:    edge.ID.Hex(),
				TargetType:  "follow_edge",
				Message:     name + " accepted your follow request",
			})
		}
	}
	return edge, nil
}

// Unfollow removes the edge follower -> target. Idempotent: a missing edge
// is not an error. Counts are decremented only if the edge was accepted.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID string) error {
	deleted, err := s.follows.DeleteEdge(ctx, followerID, targetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil
		}
		return err
	}
	if deleted.Status == models.FollowStatusAccepted {
		return s.users.AdjustFollowCounts(ctx, followerID, targetID, -1)
	}
	return nil
}

// Followers returns the accepted followers of userID, newest first.
func (s *FollowService) Followers(ctx context.Context, userID string, pager models.Pager) ([]models.FollowEdge, models.PageMeta, error) {
	pager = pager.Normalize()
	edges, total, err := s.follows.ListFollowers(ctx, userID, pager.Skip(), int64(pager.Limit))
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return edges, models.NewPageMeta(pager, total), nil
}

// Following returns the accepted follows originating from userID, newest first.
func (s *FollowService) Following(ctx context.Context, userID string, pager models.Pager) ([]models.FollowEdge, models.PageMeta, error) {
	pager = pager.Normalize()
	edges, total, err := s.follows.ListFollowing(ctx, userID, pager.Skip(), int64(pager.Limit))
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return edges, models.NewPageMeta(pager, total), nil
}

// PendingRequests returns follow requests awaiting userID's response.
func (s *FollowService) PendingRequests(ctx context.Context, userID string, pager models.Pager) ([]models.FollowEdge, models.PageMeta, error) {
	pager = pager.Normalize()
	edges, total, err := s.follows.ListPendingRequests(ctx, userID, pager.Skip(), int64(pager.Limit))
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return edges, models.NewPageMeta(pager, total), nil
}

func (s *FollowService) notifyRequest(ctx context.Context, followerID string, target *models.User, edge *models.FollowEdge) {
	follower, err := s.users.GetUserByID(ctx, followerID)
	name := followerID
	if err == nil {
		name = follower.DisplayName
	}
	s.notifier.Notify(ctx, target, &models.Notification{
		Type:        models.NotificationTypeFollowRequest,
		ActorID:     followerID,
		RecipientID: target.ID,
		TargetID:    edge.ID.Hex(),
		TargetType:  "follow_edge",
		Message:     name + " requested to follow you",
	})
}
