package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/volveu/volve/internal/middleware"
	"github.com/volveu/volve/internal/service"
	"github.com/volveu/volve/pkg/logger"
)

// UserHandler serves user listing, profiles and root-level role changes
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a user handler
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns all users (administrators only)
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one user's profile
func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a profile edit to the caller's own account. Any id in
// the payload is ignored; identity comes from the verified claims only.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req service.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Profile updated", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, user)
}

// UpdatePassword replaces the caller's own password
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.users.UpdatePassword(c.Request().Context(), claims.UserID, req.Password); err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Password changed", zap.Uint("user_id", claims.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Promote raises a user to administrator (root only)
func (h *UserHandler) Promote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.users.Promote(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("User promoted to administrator", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "user promoted"})
}

// Demote lowers an administrator back to user (root only)
func (h *UserHandler) Demote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.users.Demote(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Administrator demoted to user", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "user demoted"})
}
