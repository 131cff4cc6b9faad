package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories/memory"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
	"github.com/rudra-paul/socialsphere/backend/validators"
)

type handlerFixture struct {
	echo    *echo.Echo
	users   *memory.UserStore
	follows *memory.FollowStore

	followService *services.FollowService
	resolver      *services.VisibilityResolver
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

	users := memory.NewUserStore()
	follows := memory.NewFollowStore()
	notifier := services.NewNotificationService(memory.NewNotificationStore(), nil)
	return &handlerFixture{
		echo:          e,
		users:         users,
		follows:       follows,
		followService: services.NewFollowService(users, follows, notifier),
		resolver:      services.NewVisibilityResolver(users, follows),
	}
}

func (f *handlerFixture) seedUser(t *testing.T, id string, private bool) {
	t.Helper()
	err := f.users.CreateUser(context.Background(), &models.User{
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

// request builds an authenticated echo context for a handler call.
func (f *handlerFixture) request(method, target, viewerID, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	if viewerID != "" {
		c.Set("userID", viewerID)
	}
	return c, rec
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Meta    *models.PageMeta `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestFollowUserCreatesRequest(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	h := NewFollowHandler(f.followService, f.resolver)

	c, rec := f.request(http.MethodPost, "/users/bob/follow", "alice", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")

	if err := h.FollowUser(c); err != nil {
		t.Fatalf("FollowUser: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var edge models.FollowEdge
	if err := json.Unmarshal(env.Data, &edge); err != nil {
		t.Fatalf("decode edge: %v", err)
	}
	if edge.Status != models.FollowStatusPending || edge.FollowerID != "alice" || edge.FollowingID != "bob" {
		t.Errorf("edge = %+v, want pending alice -> bob", edge)
	}
}

func TestFollowUserConflictOnDuplicate(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	h := NewFollowHandler(f.followService, f.resolver)

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		c, rec := f.request(http.MethodPost, "/users/bob/follow", "alice", "")
		c.SetParamNames("id")
		c.SetParamValues("bob")
		if err := h.FollowUser(c); err != nil {
			t.Fatalf("FollowUser #%d: %v", i+1, err)
		}
		if rec.Code != want {
			t.Errorf("request #%d status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestRespondToRequestAccept(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	h := NewFollowHandler(f.followService, f.resolver)

	edge, err := f.followService.SendRequest(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	c, rec := f.request(http.MethodPut, "/follow/requests/"+edge.ID.Hex(), "bob", `{"status":"accepted"}`)
	c.SetParamNames("id")
	c.SetParamValues(edge.ID.Hex())

	if err := h.RespondToRequest(c); err != nil {
		t.Fatalf("RespondToRequest: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	user, err := f.users.GetUserByID(context.Background(), "bob")
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if user.FollowersCount != 1 {
		t.Errorf("bob followers = %d, want 1", user.FollowersCount)
	}
}

func TestRespondToRequestRejectsInvalidStatus(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "bob", true)
	h := NewFollowHandler(f.followService, f.resolver)

	c, _ := f.request(http.MethodPut, "/follow/requests/000000000000000000000000", "bob", `{"status":"maybe"}`)
	c.SetParamNames("id")
	c.SetParamValues("000000000000000000000000")

	err := h.RespondToRequest(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("RespondToRequest with bad status: got %v, want 400", err)
	}
}

func TestRespondToRequestForeignResponder(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	f.seedUser(t, "mallory", false)
	h := NewFollowHandler(f.followService, f.resolver)

	edge, err := f.followService.SendRequest(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	c, rec := f.request(http.MethodPut, "/follow/requests/"+edge.ID.Hex(), "mallory", `{"status":"accepted"}`)
	c.SetParamNames("id")
	c.SetParamValues(edge.ID.Hex())

	if err := h.RespondToRequest(c); err != nil {
		t.Fatalf("RespondToRequest: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestGetFollowersGatedByVisibility(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", true)
	f.seedUser(t, "carol", false)
	h := NewFollowHandler(f.followService, f.resolver)

	// carol follows bob, so bob has one follower; alice holds no edge.
	edge, err := f.followService.SendRequest(context.Background(), "carol", "bob")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := f.followService.Respond(context.Background(), edge.ID.Hex(), "bob", true); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// A non-follower is denied the private account's follower list.
	c, rec := f.request(http.MethodGet, "/users/bob/followers", "alice", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")
	if err := h.GetFollowers(c); err != nil {
		t.Fatalf("GetFollowers: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-follower status = %d, want 403", rec.Code)
	}

	// An accepted follower may list them.
	c, rec = f.request(http.MethodGet, "/users/bob/followers", "carol", "")
	c.SetParamNames("id")
	c.SetParamValues("bob")
	if err := h.GetFollowers(c); err != nil {
		t.Fatalf("GetFollowers: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("follower status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Meta == nil || env.Meta.TotalItems != 1 {
		t.Errorf("meta = %+v, want one follower", env.Meta)
	}
}

func TestUnfollowIsIdempotentOverHTTP(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "alice", false)
	f.seedUser(t, "bob", false)
	h := NewFollowHandler(f.followService, f.resolver)

	for i := 0; i < 2; i++ {
		c, rec := f.request(http.MethodDelete, "/users/bob/follow", "alice", "")
		c.SetParamNames("id")
		c.SetParamValues("bob")
		if err := h.UnfollowUser(c); err != nil {
			t.Fatalf("UnfollowUser #%d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("unfollow #%d status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestGetPendingRequestsListsNewestFirst(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "bob", true)
	ctx := context.Background()
	for i, follower := range []string{"alice", "carol"} {
		f.seedUser(t, follower, false)
		if _, err := f.followService.SendRequest(ctx, follower, "bob"); err != nil {
			t.Fatalf("SendRequest %s: %v", follower, err)
		}
		// Distinct request times for a deterministic order.
		if i == 0 {
			time.Sleep(2 * time.Millisecond)
		}
	}
	h := NewFollowHandler(f.followService, f.resolver)

	c, rec := f.request(http.MethodGet, "/follow/requests", "bob", "")
	if err := h.GetPendingRequests(c); err != nil {
		t.Fatalf("GetPendingRequests: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var edges []models.FollowEdge
	if err := json.Unmarshal(env.Data, &edges); err != nil {
		t.Fatalf("decode edges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("pending = %d edges, want 2", len(edges))
	}
	if edges[0].FollowerID != "carol" || edges[1].FollowerID != "alice" {
		t.Errorf("order = [%s %s], want newest first [carol alice]", edges[0].FollowerID, edges[1].FollowerID)
	}
}
