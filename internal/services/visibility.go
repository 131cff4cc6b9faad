package services

import (
	"context"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
)

// Reason tags a visibility decision with why it was made.
type Reason string

const (
	ReasonOwn              Reason = "own"
	ReasonFollowing        Reason = "following"
	ReasonPublic           Reason = "public"
	ReasonFallbackCategory Reason = "fallback-category"
	ReasonBlocked          Reason = "blocked"
	ReasonPrivate          Reason = "private"
)

// Decision is the outcome of a visibility check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

// VisibilityResolver is the single place where privacy, follow and block
// rules combine into a visibility decision. Every handler that reveals a
// user's profile or content must go through CanView; none re-derive the
// rules locally. Block status is always checked before privacy.
type VisibilityResolver struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

// NewVisibilityResolver creates a new VisibilityResolver
func NewVisibilityResolver(users repositories.UserRepository, follows repositories.FollowRepository) *VisibilityResolver {
	return &VisibilityResolver{users: users, follows: follows}
}

// CanView decides whether viewerID may see targetID's profile and content.
// The same decision governs profile fetches, single-post fetches and
// follower listings. Returns ErrUserNotFound when the target is missing.
func (r *VisibilityResolver) CanView(ctx context.Context, viewerID, targetID string) (Decision, error) {
	if viewerID == targetID {
		return Decision{Allowed: true, Reason: ReasonOwn}, nil
	}

	target, err := r.users.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return Decision{}, ErrUserNotFound
		}
		return Decision{}, err
	}
	viewer, err := r.users.GetUserByID(ctx, viewerID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return Decision{}, ErrUserNotFound
		}
		return Decision{}, err
	}

	return r.decide(ctx, viewer, target)
}

// CanViewUser is CanView for callers that already hold both documents.
func (r *VisibilityResolver) CanViewUser(ctx context.Context, viewer, target *models.User) (Decision, error) {
	if viewer.ID == target.ID {
		return Decision{Allowed: true, Reason: ReasonOwn}, nil
	}
	return r.decide(ctx, viewer, target)
}

func (r *VisibilityResolver) decide(ctx context.Context, viewer, target *models.User) (Decision, error) {
	if viewer.HasBlocked(target.ID) || target.HasBlocked(viewer.ID) {
		return Decision{Allowed: false, Reason: ReasonBlocked}, nil
	}
	if !target.IsPrivate {
		return Decision{Allowed: true, Reason: ReasonPublic}, nil
	}
	accepted, err := r.follows.IsAccepted(ctx, viewer.ID, target.ID)
	if err != nil {
		return Decision{}, err
	}
	if accepted {
		return Decision{Allowed: true, Reason: ReasonFollowing}, nil
	}
	return Decision{Allowed: false, Reason: ReasonPrivate}, nil
}
