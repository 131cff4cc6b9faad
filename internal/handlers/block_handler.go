package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// BlockHandler handles block/unblock HTTP requests
type BlockHandler struct {
	blockService *services.BlockService
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(blockService *services.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// RegisterBlockRoutes registers block-related routes
func (h *BlockHandler) RegisterBlockRoutes(g *echo.Group) {
	g.POST("/users/:id/block", h.BlockUser)
	g.DELETE("/users/:id/block", h.UnblockUser)
	g.GET("/blocks", h.GetBlockedUsers)
}

// BlockUser blocks a user
func (h *BlockHandler) BlockUser(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.blockService.Block(c.Request().Context(), viewerID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, echo.Map{"blocked": true})
}

// UnblockUser unblocks a user
func (h *BlockHandler) UnblockUser(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.blockService.Unblock(c.Request().Context(), viewerID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, echo.Map{"blocked": false})
}

// GetBlockedUsers lists the users the viewer has blocked
func (h *BlockHandler) GetBlockedUsers(c echo.Context) error {
	blocked, err := h.blockService.BlockedUsers(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, blocked)
}
