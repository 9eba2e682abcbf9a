package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/middleware"
	"github.com/volveu/volve/internal/service"
	"github.com/volveu/volve/pkg/logger"
	"github.com/volveu/volve/prometheus"
)

// ActivityHandler serves activity search and administrator mutations
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler creates an activity handler
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// parseListFilter reads the optional query predicates. Malformed values are
// validation errors raised before any store access.
func parseListFilter(c echo.Context) (service.ActivityFilter, error) {
	filter := service.ActivityFilter{
		SearchTerm: c.QueryParam("search_term"),
		Tags:       c.QueryParams()["tags"],
	}

	if raw := c.QueryParam("npo_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, apperr.Validation("npo_id", "must be a numeric id")
		}
		npoID := uint(id)
		filter.NpoID = &npoID
	}

	if raw := c.QueryParam("window_start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperr.Validation("window_start", "must be an RFC 3339 timestamp")
		}
		filter.WindowStart = &start
	}
	if raw := c.QueryParam("window_end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperr.Validation("window_end", "must be an RFC 3339 timestamp")
		}
		filter.WindowEnd = &end
	}

	return filter, nil
}

// List returns activities matching the supplied filter predicates
func (h *ActivityHandler) List(c echo.Context) error {
	prometheus.ActivityOperationCounter.WithLabelValues("list").Inc()

	filter, err := parseListFilter(c)
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	activities, err := h.activities.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, activities)
}

// Get returns one enriched activity
func (h *ActivityHandler) Get(c echo.Context) error {
	prometheus.ActivityOperationCounter.WithLabelValues("get").Inc()

	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	activity, err := h.activities.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, activity)
}

// Create stores a new activity. The creating administrator is the verified
// caller; a created_by_admin_id in the payload is never honored.
func (h *ActivityHandler) Create(c echo.Context) error {
	prometheus.ActivityOperationCounter.WithLabelValues("create").Inc()

	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req service.CreateActivityInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	activity, err := h.activities.Create(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Activity created",
		zap.Uint("activity_id", activity.ID),
		zap.Uint("admin_id", claims.UserID))
	return c.JSON(http.StatusCreated, activity)
}

// Update applies a partial edit plus tag diff in one transaction
func (h *ActivityHandler) Update(c echo.Context) error {
	prometheus.ActivityOperationCounter.WithLabelValues("update").Inc()

	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req service.UpdateActivityInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ID = id

	activity, err := h.activities.Update(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Activity updated", zap.Uint("activity_id", activity.ID))
	return c.JSON(http.StatusOK, activity)
}

// Delete removes an activity and its enrollments
func (h *ActivityHandler) Delete(c echo.Context) error {
	prometheus.ActivityOperationCounter.WithLabelValues("delete").Inc()

	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.activities.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Activity deleted", zap.Uint("activity_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "activity deleted"})
}

// Tags returns all stored tags
func (h *ActivityHandler) Tags(c echo.Context) error {
	tags, err := h.activities.ListTags(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}
