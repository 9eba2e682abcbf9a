package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/middleware"
	"github.com/volveu/volve/internal/service"
	"github.com/volveu/volve/pkg/jwtutil"
	"github.com/volveu/volve/pkg/logger"
	"github.com/volveu/volve/prometheus"
)

// AuthHandler serves signup, login and the current-user endpoint
type AuthHandler struct {
	users *service.UserService
	jwt   *jwtutil.JWTUtil
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(users *service.UserService, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

// Register handles public signup
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		// A duplicate email gets the same generic answer as a store fault
		// so the endpoint cannot be used to probe which emails exist.
		if apperr.IsConflict(err) {
			log.Warn("Registration with existing email", zap.String("email", req.Email))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed, please try again later"})
		}
		return writeError(c, err)
	}

	log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user":    user,
	})
}

// Login verifies credentials and issues a token carrying the role
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if apperr.IsAuthorization(err) {
			log.Warn("Failed login", zap.String("email", req.Email))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeError(c, err)
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the caller's own profile
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
