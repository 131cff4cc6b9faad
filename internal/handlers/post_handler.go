package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	resolver       *services.VisibilityResolver
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, resolver *services.VisibilityResolver) *PostHandler {
	return &PostHandler{postRepository: postRepo, userRepository: userRepo, resolver: resolver}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// CreatePost creates a new post for the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID:  viewerID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		VideoURLs: req.VideoURLs,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.AdjustPostsCount(c.Request().Context(), viewerID, 1); err != nil {
		log.Printf("failed to increment posts count for %s: %v", viewerID, err)
	}
	return respondOK(c, http.StatusCreated, post)
}

// GetPost retrieves a single post, gated by the visibility resolver on its author.
func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID := getUserIDFromContext(c)

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return respondError(c, services.ErrPostNotFound)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	decision, err := h.resolver.CanView(c.Request().Context(), viewerID, post.AuthorID)
	if err != nil {
		return respondError(c, err)
	}
	if !decision.Allowed {
		return respondDenied(c)
	}
	return respondOK(c, http.StatusOK, post)
}

// DeletePost soft-deletes the authenticated user's own post
func (h *PostHandler) DeletePost(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	deleted, err := h.postRepository.SoftDeletePost(c.Request().Context(), c.Param("id"), viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !deleted {
		return respondError(c, services.ErrPostNotFound)
	}
	if err := h.userRepository.AdjustPostsCount(c.Request().Context(), viewerID, -1); err != nil {
		log.Printf("failed to decrement posts count for %s: %v", viewerID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUserPosts lists a user's posts, gated by the visibility resolver.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	targetID := c.Param("id")

	decision, err := h.resolver.CanView(c.Request().Context(), viewerID, targetID)
	if err != nil {
		return respondError(c, err)
	}
	if !decision.Allowed {
		return respondDenied(c)
	}

	pager := getPagerFromQuery(c)
	posts, total, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), targetID, pager.Skip(), int64(pager.Limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return respondPage(c, posts, models.NewPageMeta(pager, total))
}
