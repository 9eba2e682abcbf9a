package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/model"
)

// ActivityService implements activity search and administrator mutations
// over an injected store handle.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates an activity service backed by db
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// TagInput references a tag by its natural key
type TagInput struct {
	Title string `json:"title"`
}

// CreateActivityInput carries the fields of a new activity. The creating
// administrator is taken from the caller context, never from input.
type CreateActivityInput struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	StartTimestamp     time.Time  `json:"start_timestamp"`
	EndTimestamp       time.Time  `json:"end_timestamp"`
	Location           string     `json:"location"`
	PrimaryContactInfo string     `json:"primary_contact_info"`
	Capacity           *int       `json:"capacity,omitempty"`
	NpoID              uint       `json:"npo_id"`
	Tags               []TagInput `json:"tags,omitempty"`
}

func (in *CreateActivityInput) validate(now time.Time) error {
	for field, value := range map[string]string{
		"title":                in.Title,
		"description":          in.Description,
		"location":             in.Location,
		"primary_contact_info": in.PrimaryContactInfo,
	} {
		if strings.TrimSpace(value) == "" {
			return apperr.Validation(field, "must not be empty")
		}
	}
	if !in.StartTimestamp.Before(in.EndTimestamp) {
		return apperr.Validation("start_timestamp", "must be before end timestamp")
	}
	if !in.StartTimestamp.After(now) {
		return apperr.Validation("start_timestamp", "must be in the future")
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return apperr.Validation("capacity", "must be non-negative")
	}
	if in.NpoID == 0 {
		return apperr.Validation("npo_id", "must be set")
	}
	return nil
}

// UpdateActivityInput identifies an activity and carries a partial update.
// Nil fields are left unchanged. AddedTags and RemovedTags must be disjoint
// and are applied in the same transaction as the scalar fields.
type UpdateActivityInput struct {
	ID                 uint
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	StartTimestamp     *time.Time `json:"start_timestamp,omitempty"`
	EndTimestamp       *time.Time `json:"end_timestamp,omitempty"`
	Location           *string    `json:"location,omitempty"`
	PrimaryContactInfo *string    `json:"primary_contact_info,omitempty"`
	Capacity           *int       `json:"capacity,omitempty"`
	NpoID              *uint      `json:"npo_id,omitempty"`
	AddedTags          []TagInput `json:"added_tags,omitempty"`
	RemovedTags        []TagInput `json:"removed_tags,omitempty"`
}

func (in *UpdateActivityInput) validate() error {
	for field, value := range map[string]*string{
		"title":                in.Title,
		"description":          in.Description,
		"location":             in.Location,
		"primary_contact_info": in.PrimaryContactInfo,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return apperr.Validation(field, "must not be empty")
		}
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return apperr.Validation("capacity", "must be non-negative")
	}
	added := make(map[string]bool, len(in.AddedTags))
	for _, tag := range in.AddedTags {
		added[tag.Title] = true
	}
	for _, tag := range in.RemovedTags {
		if added[tag.Title] {
			return apperr.Validation("removed_tags", "added and removed tag sets must be disjoint")
		}
	}
	return nil
}

// findOrCreateTag resolves a tag title to its row, inserting it when absent.
// The insert ignores a concurrent creator winning the race on the natural
// key; both callers resolve to the same row.
func findOrCreateTag(tx *gorm.DB, title string) (*model.Tag, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("tags", "tag title must not be empty")
	}
	tag := model.Tag{Title: title}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return &tag, nil
}

// Create validates and stores a new activity on behalf of adminID, resolving
// tags connect-or-create.
func (s *ActivityService) Create(ctx context.Context, adminID uint, in CreateActivityInput) (*model.Activity, error) {
	if err := in.validate(time.Now()); err != nil {
		return nil, err
	}

	activity := model.Activity{
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		StartTimestamp:     in.StartTimestamp,
		EndTimestamp:       in.EndTimestamp,
		Location:           strings.TrimSpace(in.Location),
		PrimaryContactInfo: strings.TrimSpace(in.PrimaryContactInfo),
		Capacity:           in.Capacity,
		NpoID:              in.NpoID,
		CreatedByAdminID:   adminID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var npo model.Npo
		if err := tx.First(&npo, in.NpoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("npo")
			}
			return apperr.Infrastructure(err)
		}

		if err := tx.Create(&activity).Error; err != nil {
			return apperr.Infrastructure(err)
		}

		for _, input := range in.Tags {
			tag, err := findOrCreateTag(tx, input.Title)
			if err != nil {
				return err
			}
			if err := tx.Model(&activity).Association("Tags").Append(tag); err != nil {
				return apperr.Infrastructure(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, activity.ID)
}

// Update applies a partial field update and the tag diff in one transaction.
// Either every step takes effect or none does: a failing tag step rolls back
// the scalar changes from the same call.
func (s *ActivityService) Update(ctx context.Context, in UpdateActivityInput) (*model.Activity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity model.Activity
		if err := tx.First(&activity, in.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("activity")
			}
			return apperr.Infrastructure(err)
		}

		// The start-before-end invariant holds for the effective values,
		// whichever side the update touches.
		start := activity.StartTimestamp
		end := activity.EndTimestamp
		if in.StartTimestamp != nil {
			start = *in.StartTimestamp
		}
		if in.EndTimestamp != nil {
			end = *in.EndTimestamp
		}
		if !start.Before(end) {
			return apperr.Validation("start_timestamp", "must be before end timestamp")
		}

		if in.NpoID != nil {
			var npo model.Npo
			if err := tx.First(&npo, *in.NpoID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("npo")
				}
				return apperr.Infrastructure(err)
			}
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.StartTimestamp != nil {
			updates["start_timestamp"] = *in.StartTimestamp
		}
		if in.EndTimestamp != nil {
			updates["end_timestamp"] = *in.EndTimestamp
		}
		if in.Location != nil {
			updates["location"] = strings.TrimSpace(*in.Location)
		}
		if in.PrimaryContactInfo != nil {
			updates["primary_contact_info"] = strings.TrimSpace(*in.PrimaryContactInfo)
		}
		if in.Capacity != nil {
			updates["capacity"] = *in.Capacity
		}
		if in.NpoID != nil {
			updates["npo_id"] = *in.NpoID
		}
		if len(updates) > 0 {
			if err := tx.Model(&activity).Updates(updates).Error; err != nil {
				return apperr.Infrastructure(err)
			}
		}

		for _, input := range in.AddedTags {
			tag, err := findOrCreateTag(tx, input.Title)
			if err != nil {
				return err
			}
			if err := tx.Model(&activity).Association("Tags").Append(tag); err != nil {
				return apperr.Infrastructure(err)
			}
		}

		for _, input := range in.RemovedTags {
			var linked int64
			if err := tx.Table("activity_tags").
				Where("activity_id = ? AND tag_title = ?", activity.ID, input.Title).
				Count(&linked).Error; err != nil {
				return apperr.Infrastructure(err)
			}
			if linked == 0 {
				// Fails the whole update so the scalar changes above roll back
				return apperr.NotFound("tag " + input.Title + " on activity")
			}
			if err := tx.Model(&activity).Association("Tags").Delete(&model.Tag{Title: input.Title}); err != nil {
				return apperr.Infrastructure(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, in.ID)
}

// Delete removes an activity together with its enrollments and tag links
func (s *ActivityService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity model.Activity
		if err := tx.First(&activity, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("activity")
			}
			return apperr.Infrastructure(err)
		}

		if err := tx.Where("activity_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return apperr.Infrastructure(err)
		}
		if err := tx.Model(&activity).Association("Tags").Clear(); err != nil {
			return apperr.Infrastructure(err)
		}
		if err := tx.Delete(&activity).Error; err != nil {
			return apperr.Infrastructure(err)
		}
		return nil
	})
}
