package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
	resolver       *services.VisibilityResolver
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, resolver *services.VisibilityResolver) *UserHandler {
	return &UserHandler{userRepository: userRepo, resolver: resolver}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)    // Get own profile
	g.PUT("/profile", h.UpdateProfile) // Update own profile
	g.DELETE("/profile", h.DeactivateProfile)
	g.GET("/users/:id", h.GetUser) // Get other user's profile by ID
	g.GET("/users/search", h.SearchUsers)
}

// GetUser retrieves another user's profile, gated by the visibility resolver.
func (h *UserHandler) GetUser(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	targetID := c.Param("id")

	decision, err := h.resolver.CanView(c.Request().Context(), viewerID, targetID)
	if err != nil {
		return respondError(c, err)
	}
	if !decision.Allowed {
		return respondDenied(c)
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), targetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return respondError(c, services.ErrUserNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respondOK(c, http.StatusOK, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return respondError(c, services.ErrUserNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respondOK(c, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return respondError(c, services.ErrUserNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if req.Religion != "" {
		user.Religion = req.Religion
	}
	if req.IsPrivate != nil {
		user.IsPrivate = *req.IsPrivate
	}
	if req.DeviceToken != "" {
		user.DeviceToken = req.DeviceToken
	}

	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respondOK(c, http.StatusOK, user)
}

// DeactivateProfile soft-deletes the authenticated user's profile.
func (h *UserHandler) DeactivateProfile(c echo.Context) error {
	if err := h.userRepository.DeactivateUser(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		if err == repositories.ErrNotFound {
			return respondError(c, services.ErrUserNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchUsers searches for users by username or display name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]models.UserCompact, len(users))
	for i := range users {
		results[i] = users[i].ToCompact()
	}
	return respondOK(c, http.StatusOK, results)
}
