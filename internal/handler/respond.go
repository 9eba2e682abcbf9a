package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/pkg/logger"
	"github.com/volveu/volve/prometheus"
)

// writeError maps the error taxonomy onto HTTP statuses. Infrastructure
// faults are logged with their cause and rendered generically; the caller
// never sees internal detail.
func writeError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	prometheus.RecordError(kind.String())

	switch kind {
	case apperr.KindValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case apperr.KindAuthorization:
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case apperr.KindConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		logger.FromContext(c).Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error, please try again later"})
	}
}

// paramID parses a numeric path parameter
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Validation(name, "must be a numeric id")
	}
	return uint(id), nil
}
