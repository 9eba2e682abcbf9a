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

// AttendanceHandler serves self-service signup/withdrawal and the
// administrator enrollment endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler creates an attendance handler
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Attend signs the caller up for an activity. The target user is always the
// verified caller; ids in the payload are ignored.
func (h *AttendanceHandler) Attend(c echo.Context) error {
	prometheus.EnrollmentOperationCounter.WithLabelValues("attend").Inc()

	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	activityID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	enrollment, err := h.attendance.SignUp(c.Request().Context(), claims.UserID, activityID)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("User signed up",
		zap.Uint("user_id", claims.UserID),
		zap.Uint("activity_id", activityID))
	return c.JSON(http.StatusCreated, enrollment)
}

// Unattend withdraws the caller from an activity
func (h *AttendanceHandler) Unattend(c echo.Context) error {
	prometheus.EnrollmentOperationCounter.WithLabelValues("unattend").Inc()

	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	activityID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.attendance.Withdraw(c.Request().Context(), claims.UserID, activityID); err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("User withdrew",
		zap.Uint("user_id", claims.UserID),
		zap.Uint("activity_id", activityID))
	return c.JSON(http.StatusOK, echo.Map{"message": "withdrawn from activity"})
}

// ListOwn returns the caller's enrollments with activity detail
func (h *AttendanceHandler) ListOwn(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	enrollments, err := h.attendance.ListOwn(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, enrollments)
}

// Stats returns the caller's volunteering summary
func (h *AttendanceHandler) Stats(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.attendance.Stats(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// AdminList returns enrollments filtered by activity and/or user
func (h *AttendanceHandler) AdminList(c echo.Context) error {
	var filter service.EnrollmentFilter

	if raw := c.QueryParam("activity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return writeError(c, apperr.Validation("activity_id", "must be a numeric id"))
		}
		activityID := uint(id)
		filter.ActivityID = &activityID
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return writeError(c, apperr.Validation("user_id", "must be a numeric id"))
		}
		userID := uint(id)
		filter.UserID = &userID
	}

	enrollments, err := h.attendance.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, enrollments)
}

// AdminCreate enrolls an explicit target user into an activity
func (h *AttendanceHandler) AdminCreate(c echo.Context) error {
	prometheus.EnrollmentOperationCounter.WithLabelValues("admin_enroll").Inc()

	var req struct {
		ActivityID uint `json:"activity_id"`
		UserID     uint `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ActivityID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "activity_id and user_id are required"})
	}

	enrollment, err := h.attendance.Enroll(c.Request().Context(), req.UserID, req.ActivityID)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Administrator enrolled user",
		zap.Uint("user_id", req.UserID),
		zap.Uint("activity_id", req.ActivityID))
	return c.JSON(http.StatusCreated, enrollment)
}

// AdminUpdate records hours contributed on an existing enrollment
func (h *AttendanceHandler) AdminUpdate(c echo.Context) error {
	prometheus.EnrollmentOperationCounter.WithLabelValues("record_hours").Inc()

	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req struct {
		HoursPut *float64 `json:"hours_put"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.HoursPut == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours_put is required"})
	}

	enrollment, err := h.attendance.RecordHours(c.Request().Context(), id, *req.HoursPut)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Hours recorded",
		zap.Uint("enrollment_id", id),
		zap.Float64("hours_put", *req.HoursPut))
	return c.JSON(http.StatusOK, enrollment)
}

// AdminDelete removes an enrollment by id
func (h *AttendanceHandler) AdminDelete(c echo.Context) error {
	prometheus.EnrollmentOperationCounter.WithLabelValues("admin_remove").Inc()

	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.attendance.Remove(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("Enrollment removed", zap.Uint("enrollment_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "enrollment removed"})
}
