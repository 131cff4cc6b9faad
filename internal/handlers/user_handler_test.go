package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories/memory"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

func TestGetUserVisibilityGate(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	f.seedUser(t, "dave", false)
	if _, err := f.users.AddBlockedUser(context.Background(), "dave", "alice"); err != nil {
		t.Fatalf("block: %v", err)
	}
	h := NewUserHandler(f.users, f.resolver)

	tests := []struct {
		name   string
		viewer string
		target string
		want   int
	}{
		{"public profile", "bob", "alice", http.StatusOK},
		{"own private profile", "bob", "bob", http.StatusOK},
		{"private profile without edge", "alice", "bob", http.StatusForbidden},
		{"blocked viewer", "alice", "dave", http.StatusForbidden},
		{"missing target", "alice", "ghost", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := f.request(http.MethodGet, "/users/"+tt.target, tt.viewer, "")
			c.SetParamNames("id")
			c.SetParamValues(tt.target)
			if err := h.GetUser(c); err != nil {
				t.Fatalf("GetUser: %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDeniedProfilesShareOneMessage(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	f.seedUser(t, "dave", false)
	if _, err := f.users.AddBlockedUser(context.Background(), "dave", "alice"); err != nil {
		t.Fatalf("block: %v", err)
	}
	h := NewUserHandler(f.users, f.resolver)

	// The private denial and the block denial must be indistinguishable,
	// otherwise the response leaks that the viewer was blocked.
	var bodies []string
	for _, target := range []string{"bob", "dave"} {
		c, rec := f.request(http.MethodGet, "/users/"+target, "alice", "")
		c.SetParamNames("id")
		c.SetParamValues(target)
		if err := h.GetUser(c); err != nil {
			t.Fatalf("GetUser %s: %v", target, err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status for %s = %d, want 403", target, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Errorf("denial bodies differ:\n%s\n%s", bodies[0], bodies[1])
	}
}

func TestUpdateProfileTogglesPrivacy(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	h := NewUserHandler(f.users, f.resolver)

	c, rec := f.request(http.MethodPut, "/profile", "alice", `{"is_private":true,"bio":"hello"}`)
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	user, err := f.users.GetUserByID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if !user.IsPrivate || user.Bio != "hello" {
		t.Errorf("user after update = %+v, want private with bio", user)
	}
}

func TestDeactivateProfileHidesFromSearch(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	h := NewUserHandler(f.users, f.resolver)

	c, rec := f.request(http.MethodDelete, "/profile", "alice", "")
	if err := h.DeactivateProfile(c); err != nil {
		t.Fatalf("DeactivateProfile: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	c, rec = f.request(http.MethodGet, "/users/search?q=alice", "alice", "")
	if err := h.SearchUsers(c); err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	env := decodeEnvelope(t, rec)
	var results []models.UserCompact
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("search results = %+v, deactivated user must be hidden", results)
	}
}

func TestBlockUnblockOverHTTP(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", false)
	notifier := services.NewNotificationService(memory.NewNotificationStore(), nil)
	h := NewBlockHandler(services.NewBlockService(f.users, f.follows, notifier))

	c, rec := f.request(http.MethodPost, "/users/bob/block", "alice", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")
	if err := h.BlockUser(c); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("block status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// Repeating the block conflicts.
	c, rec = f.request(http.MethodPost, "/users/bob/block", "alice", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")
	if err := h.BlockUser(c); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("repeated block status = %d, want 409", rec.Code)
	}

	c, rec = f.request(http.MethodGet, "/blocks", "alice", "")
	if err := h.GetBlockedUsers(c); err != nil {
		t.Fatalf("GetBlockedUsers: %v", err)
	}
	env := decodeEnvelope(t, rec)
	var blocked []models.UserCompact
	if err := json.Unmarshal(env.Data, &blocked); err != nil {
		t.Fatalf("decode blocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0].ID != "bob" {
		t.Errorf("blocked = %+v, want only bob", blocked)
	}

	c, rec = f.request(http.MethodDelete, "/users/bob/block", "alice", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")
	if err := h.UnblockUser(c); err != nil {
		t.Fatalf("UnblockUser: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("unblock status = %d, want 200", rec.Code)
	}

	// Unblocking again is a client error.
	c, rec = f.request(http.MethodDelete, "/users/bob/block", "alice", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")
	if err := h.UnblockUser(c); err != nil {
		t.Fatalf("UnblockUser: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("repeated unblock status = %d, want 400", rec.Code)
	}
}
