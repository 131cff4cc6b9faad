package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
)

// getUserIDFromContext returns the authenticated viewer's user ID placed in
// the context by the auth middleware, or "" when unauthenticated.
func getUserIDFromContext(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

// getPagerFromQuery reads page/limit query parameters.
func getPagerFromQuery(c echo.Context) models.Pager {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return models.Pager{Page: page, Limit: limit}.Normalize()
}

// respondOK writes the success envelope.
func respondOK(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, echo.Map{"success": true, "data": data})
}

// respondPage writes the success envelope with pagination metadata.
func respondPage(c echo.Context, data interface{}, meta models.PageMeta) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "meta": meta})
}

// respondMessage writes the success envelope with a message and no data.
func respondMessage(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"success": true, "message": message})
}

// respondError maps a service error to its HTTP status and writes the
// failure envelope.
func respondError(c echo.Context, err error) error {
	return c.JSON(statusForError(err), echo.Map{"success": false, "message": err.Error()})
}

// respondDenied writes the 403 failure envelope for a visibility denial.
// Blocked and private denials share one message so that the response does
// not reveal which rule applied.
func respondDenied(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "This account is private"})
}

func statusForError(err error) int {
	switch err {
	case services.ErrUserNotFound, services.ErrEdgeNotFound, services.ErrPostNotFound, services.ErrNotificationNotFound:
		return http.StatusNotFound
	case services.ErrAlreadyFollowing, services.ErrDuplicateRequest, services.ErrAlreadyBlocked:
		return http.StatusConflict
	case services.ErrSelfFollow, services.ErrSelfBlock, services.ErrNotBlocked, services.ErrInvalidState:
		return http.StatusBadRequest
	case services.ErrNotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
