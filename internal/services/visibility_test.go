package services

import (
	"context"
	"testing"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories/memory"
)

func seedUser(t *testing.T, users *memory.UserStore, id string, private bool) {
	t.Helper()
	err := users.CreateUser(context.Background(), &models.User{
		ID:          id,
		Username:    id,
		DisplayName: id,
		Email:       id + "@example.com",
		IsPrivate:   private,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func acceptEdge(t *testing.T, follows *memory.FollowStore, followerID, followingID string) {
	t.Helper()
	ctx := context.Background()
	edge := &models.FollowEdge{
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      models.FollowStatusPending,
		RequestedAt: time.Now(),
	}
	if err := follows.InsertEdge(ctx, edge); err != nil {
		t.Fatalf("insert edge %s -> %s: %v", followerID, followingID, err)
	}
	won, err := follows.TransitionEdge(ctx, edge.ID.Hex(), models.FollowStatusPending, models.FollowStatusAccepted, time.Now())
	if err != nil || !won {
		t.Fatalf("accept edge %s -> %s: won=%v err=%v", followerID, followingID, won, err)
	}
}

func TestCanViewDecisions(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	follows := memory.NewFollowStore()
	resolver := NewVisibilityResolver(users, follows)

	seedUser(t, users, "alice", false)
	seedUser(t, users, "bob", true)
	seedUser(t, users, "carol", true)
	seedUser(t, users, "dave", false)

	// carol follows bob (accepted); dave has blocked alice.
	acceptEdge(t, follows, "carol", "bob")
	if _, err := users.AddBlockedUser(ctx, "dave", "alice"); err != nil {
		t.Fatalf("block: %v", err)
	}

	tests := []struct {
		name    string
		viewer  string
		target  string
		allowed bool
		reason  Reason
	}{
		{"own profile", "bob", "bob", true, ReasonOwn},
		{"public target", "bob", "alice", true, ReasonPublic},
		{"private target without edge", "alice", "bob", false, ReasonPrivate},
		{"private target with accepted edge", "carol", "bob", true, ReasonFollowing},
		{"viewer blocked by target", "alice", "dave", false, ReasonBlocked},
		{"target blocked by viewer", "dave", "alice", false, ReasonBlocked},
		{"private viewer sees other private denied", "bob", "carol", false, ReasonPrivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := resolver.CanView(ctx, tt.viewer, tt.target)
			if err != nil {
				t.Fatalf("CanView(%s, %s): %v", tt.viewer, tt.target, err)
			}
			if decision.Allowed != tt.allowed || decision.Reason != tt.reason {
				t.Errorf("CanView(%s, %s) = {%v %s}, want {%v %s}",
					tt.viewer, tt.target, decision.Allowed, decision.Reason, tt.allowed, tt.reason)
			}
		})
	}
}

func TestCanViewBlockedWinsOverPublic(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	follows := memory.NewFollowStore()
	resolver := NewVisibilityResolver(users, follows)

	seedUser(t, users, "alice", false)
	seedUser(t, users, "bob", false)
	if _, err := users.AddBlockedUser(ctx, "alice", "bob"); err != nil {
		t.Fatalf("block: %v", err)
	}

	decision, err := resolver.CanView(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonBlocked {
		t.Errorf("got {%v %s}, want blocked denial for a public account", decision.Allowed, decision.Reason)
	}
}

func TestCanViewPendingEdgeIsNotEnough(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	follows := memory.NewFollowStore()
	resolver := NewVisibilityResolver(users, follows)

	seedUser(t, users, "alice", false)
	seedUser(t, users, "bob", true)
	err := follows.InsertEdge(ctx, &models.FollowEdge{
		FollowerID:  "alice",
		FollowingID: "bob",
		Status:      models.FollowStatusPending,
		RequestedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("insert edge: %v", err)
	}

	decision, err := resolver.CanView(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonPrivate {
		t.Errorf("got {%v %s}, want private denial for pending edge", decision.Allowed, decision.Reason)
	}
}

func TestCanViewMissingTarget(t *testing.T) {
	users := memory.NewUserStore()
	resolver := NewVisibilityResolver(users, memory.NewFollowStore())
	seedUser(t, users, "alice", false)

	if _, err := resolver.CanView(context.Background(), "alice", "ghost"); err != ErrUserNotFound {
		t.Errorf("CanView missing target: got %v, want ErrUserNotFound", err)
	}
}
