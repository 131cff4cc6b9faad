package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// FollowHandler handles follow-graph HTTP requests
type FollowHandler struct {
	followService *services.FollowService
	resolver      *services.VisibilityResolver
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService *services.FollowService, resolver *services.VisibilityResolver) *FollowHandler {
	return &FollowHandler{followService: followService, resolver: resolver}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/follow/requests", h.GetPendingRequests)
	g.PUT("/follow/requests/:id", h.RespondToRequest)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser sends a follow request to a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	edge, err := h.followService.SendRequest(c.Request().Context(), viewerID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusCreated, edge)
}

// UnfollowUser removes the viewer's follow edge to a user. Idempotent.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.followService.Unfollow(c.Request().Context(), viewerID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, echo.Map{"following": false})
}

// GetPendingRequests returns follow requests awaiting the viewer's response
func (h *FollowHandler) GetPendingRequests(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	edges, meta, err := h.followService.PendingRequests(c.Request().Context(), viewerID, getPagerFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, edges, meta)
}

// RespondToRequest accepts or rejects a pending follow request
func (h *FollowHandler) RespondToRequest(c echo.Context) error {
	viewerID := getUserIDFromContext(c)

	var req models.RespondFollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	accept := req.Status == string(models.FollowStatusAccepted)
	edge, err := h.followService.Respond(c.Request().Context(), c.Param("id"), viewerID, accept)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, edge)
}

// GetFollowers lists the accepted followers of a user, gated by the resolver.
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listEdges(c, h.followService.Followers)
}

// GetFollowing lists the users a user follows, gated by the resolver.
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listEdges(c, h.followService.Following)
}

func (h *FollowHandler) listEdges(c echo.Context, list func(ctx context.Context, userID string, pager models.Pager) ([]models.FollowEdge, models.PageMeta, error)) error {
	viewerID := getUserIDFromContext(c)
	targetID := c.Param("id")

	decision, err := h.resolver.CanView(c.Request().Context(), viewerID, targetID)
	if err != nil {
		return respondError(c, err)
	}
	if !decision.Allowed {
		return respondDenied(c)
	}

	edges, meta, err := list(c.Request().Context(), targetID, getPagerFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, edges, meta)
}
