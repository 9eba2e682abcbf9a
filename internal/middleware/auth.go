package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/volveu/volve/internal/model"
	"github.com/volveu/volve/pkg/jwtutil"
	"github.com/volveu/volve/pkg/logger"
)

// ContextUserKey is where the verified caller claims live in the Echo context
const ContextUserKey = "user"

// JWTAuth validates the bearer token and stores the caller claims in the
// context. Routes without this middleware are public.
func JWTAuth(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

// roleAllows reports whether the actual role satisfies the required one.
// ROOT outranks ADMIN outranks USER.
func roleAllows(required, actual string) bool {
	switch required {
	case model.RoleUser:
		return actual == model.RoleUser || actual == model.RoleAdmin || actual == model.RoleRoot
	case model.RoleAdmin:
		return actual == model.RoleAdmin || actual == model.RoleRoot
	case model.RoleRoot:
		return actual == model.RoleRoot
	default:
		return false
	}
}

// RequireRole gates a route group on the caller's role. Must run after
// JWTAuth. The check happens before the handler body, so a rejected call
// never reaches a service.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := CurrentUser(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			if !roleAllows(role, claims.Role) {
				logger.FromContext(c).Warn("Insufficient role",
					zap.Uint("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("required", role))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the verified caller claims set by JWTAuth
func CurrentUser(c echo.Context) (*jwtutil.UserClaims, error) {
	claims, ok := c.Get(ContextUserKey).(*jwtutil.UserClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return claims, nil
}
