package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/model"
)

// AttendanceService manages the membership relation between users and
// activities. Self-service entry points act on the caller's own identity;
// administrator variants take an explicit target user.
type AttendanceService struct {
	db *gorm.DB
}

// NewAttendanceService creates an attendance service backed by db
func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{db: db}
}

// EnrollmentFilter narrows an enrollment listing. Both predicates are
// optional and combine conjunctively.
type EnrollmentFilter struct {
	ActivityID *uint
	UserID     *uint
}

// VolunteerStats summarizes a user's participation
type VolunteerStats struct {
	TotalHours      float64 `json:"total_hours"`
	EnrollmentCount int64   `json:"enrollment_count"`
	NpoCount        int64   `json:"npo_count"`
}

// SignUp enrolls userID in activityID. Capacity is not checked: it is
// advisory metadata, and concurrent signups past it are a documented gap.
// A duplicate signup fails on the store's unique (user, activity) index.
func (s *AttendanceService) SignUp(ctx context.Context, userID, activityID uint) (*model.Enrollment, error) {
	db := s.db.WithContext(ctx)

	var activity model.Activity
	if err := db.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("activity")
		}
		return nil, apperr.Infrastructure(err)
	}

	enrollment := model.Enrollment{UserID: userID, ActivityID: activityID}
	if err := db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("already enrolled in this activity")
		}
		return nil, apperr.Infrastructure(err)
	}
	return &enrollment, nil
}

// Withdraw removes userID's enrollment in activityID. Withdrawing without a
// prior enrollment is a not-found error, never a silent no-op.
func (s *AttendanceService) Withdraw(ctx context.Context, userID, activityID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Delete(&model.Enrollment{})
	if result.Error != nil {
		return apperr.Infrastructure(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("enrollment")
	}
	return nil
}

// Enroll is the administrator variant of SignUp: it takes an explicit target
// user and verifies it resolves before creating the membership.
func (s *AttendanceService) Enroll(ctx context.Context, userID, activityID uint) (*model.Enrollment, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Infrastructure(err)
	}
	return s.SignUp(ctx, userID, activityID)
}

// RecordHours sets the hours-contributed value on an existing enrollment
func (s *AttendanceService) RecordHours(ctx context.Context, enrollmentID uint, hours float64) (*model.Enrollment, error) {
	if hours < 0 {
		return nil, apperr.Validation("hours_put", "must be non-negative")
	}

	db := s.db.WithContext(ctx)
	var enrollment model.Enrollment
	if err := db.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("enrollment")
		}
		return nil, apperr.Infrastructure(err)
	}

	if err := db.Model(&enrollment).Update("hours_put", hours).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return &enrollment, nil
}

// Remove deletes an enrollment by id (administrator removal)
func (s *AttendanceService) Remove(ctx context.Context, enrollmentID uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Enrollment{}, enrollmentID)
	if result.Error != nil {
		return apperr.Infrastructure(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("enrollment")
	}
	return nil
}

// List returns enrollments matching the filter, each carrying its user and
// its activity with the activity's NPO and tags.
func (s *AttendanceService) List(ctx context.Context, filter EnrollmentFilter) ([]model.Enrollment, error) {
	query := s.db.WithContext(ctx).Model(&model.Enrollment{})
	if filter.ActivityID != nil {
		query = query.Where("activity_id = ?", *filter.ActivityID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var enrollments []model.Enrollment
	err := query.
		Preload("User").
		Preload("Activity").
		Preload("Activity.Npo").
		Preload("Activity.Tags").
		Order("id").
		Find(&enrollments).Error
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return enrollments, nil
}

// ListOwn returns the caller's enrollments with activity detail
func (s *AttendanceService) ListOwn(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	return s.List(ctx, EnrollmentFilter{UserID: &userID})
}

// Stats aggregates a user's credited hours and participation breadth
func (s *AttendanceService) Stats(ctx context.Context, userID uint) (*VolunteerStats, error) {
	db := s.db.WithContext(ctx)
	stats := &VolunteerStats{}

	err := db.Model(&model.Enrollment{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(hours_put), 0)").
		Scan(&stats.TotalHours).Error
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	err = db.Model(&model.Enrollment{}).
		Where("user_id = ?", userID).
		Count(&stats.EnrollmentCount).Error
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	err = db.Model(&model.Enrollment{}).
		Joins("JOIN activities ON activities.id = enrollments.activity_id").
		Where("enrollments.user_id = ? AND activities.deleted_at IS NULL", userID).
		Select("COUNT(DISTINCT activities.npo_id)").
		Scan(&stats.NpoCount).Error
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	return stats, nil
}
