package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedService    *services.FeedService
	userRepository repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{feedService: feedService, userRepository: userRepo}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with its author card attached
type EnrichedPost struct {
	models.Post
	Author models.UserCompact `json:"author"`
}

// GetFeed returns the viewer's feed. The discovery=true query parameter
// widens the author set with public same-religion authors.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	opts := services.FeedOptions{
		Discovery: c.QueryParam("discovery") == "true",
		Pager:     getPagerFromQuery(c),
	}
	posts, meta, err := h.feedService.BuildFeed(c.Request().Context(), viewerID, opts)
	if err != nil {
		return respondError(c, err)
	}

	// Attach author cards, one lookup per distinct author.
	authorMap := make(map[string]models.UserCompact)
	for _, p := range posts {
		if _, ok := authorMap[p.AuthorID]; ok {
			continue
		}
		if author, err := h.userRepository.GetUserByID(c.Request().Context(), p.AuthorID); err == nil {
			authorMap[p.AuthorID] = author.ToCompact()
		}
	}
	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = EnrichedPost{Post: p, Author: authorMap[p.AuthorID]}
	}

	return respondPage(c, echo.Map{"posts": enriched}, meta)
}
