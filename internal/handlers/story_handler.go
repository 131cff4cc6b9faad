package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyRepository repositories.StoryRepository
	feedService     *services.FeedService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository, feedService *services.FeedService) *StoryHandler {
	return &StoryHandler{storyRepository: storyRepo, feedService: feedService}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.GetStories)
}

// CreateStory creates a new story for the authenticated user
func (h *StoryHandler) CreateStory(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	story := &models.Story{
		AuthorID: viewerID,
		MediaURL: req.MediaURL,
		Caption:  req.Caption,
	}
	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respondOK(c, http.StatusCreated, story)
}

// GetStories returns the unexpired stories of the viewer's visible authors
func (h *StoryHandler) GetStories(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stories, err := h.feedService.Stories(c.Request().Context(), viewerID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, echo.Map{"stories": stories})
}
