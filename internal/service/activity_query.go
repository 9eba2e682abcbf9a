package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/model"
)

// ActivityFilter carries the optional predicates of an activity search.
// Absent predicates impose no constraint; supplied predicates combine
// conjunctively across categories.
type ActivityFilter struct {
	// SearchTerm matches case-insensitively against title or description
	SearchTerm string
	// Tags requires the activity's tag set to be a superset of this set.
	// An empty slice imposes no constraint.
	Tags []string
	// NpoID requires an exact match on the owning NPO
	NpoID *uint
	// WindowStart/WindowEnd match any activity whose start or end timestamp
	// falls within the window, boundaries inclusive. Both must be supplied
	// together.
	WindowStart *time.Time
	WindowEnd   *time.Time
}

func (f *ActivityFilter) validate() error {
	if (f.WindowStart == nil) != (f.WindowEnd == nil) {
		return apperr.Validation("window", "window start and end must be supplied together")
	}
	if f.WindowStart != nil && f.WindowStart.After(*f.WindowEnd) {
		return apperr.Validation("window", "window start must not be after window end")
	}
	return nil
}

// escapeLike neutralizes LIKE metacharacters so a search term is matched as
// a literal substring, never as a pattern.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

// enriched preloads everything a caller needs to render a list or detail
// view without a second round trip.
func (s *ActivityService) enriched(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Npo").
		Preload("Tags").
		Preload("CreatedByAdmin").
		Preload("Enrollments.User")
}

// List returns all activities matching every supplied predicate, each
// enriched with its NPO, tags, volunteers and creating administrator.
func (s *ActivityService) List(ctx context.Context, filter ActivityFilter) ([]model.Activity, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&model.Activity{})

	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	if filter.NpoID != nil {
		query = query.Where("npo_id = ?", *filter.NpoID)
	}

	if filter.WindowStart != nil {
		query = query.Where(
			"(start_timestamp >= ? AND start_timestamp <= ?) OR (end_timestamp >= ? AND end_timestamp <= ?)",
			*filter.WindowStart, *filter.WindowEnd, *filter.WindowStart, *filter.WindowEnd,
		)
	}

	if len(filter.Tags) > 0 {
		// Superset match: the activity must carry every requested tag.
		linked := s.db.Table("activity_tags").
			Select("activity_id").
			Where("tag_title IN ?", filter.Tags).
			Group("activity_id").
			Having("COUNT(DISTINCT tag_title) = ?", len(filter.Tags))
		query = query.Where("id IN (?)", linked)
	}

	var activities []model.Activity
	if err := s.enriched(query).Order("id").Find(&activities).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return activities, nil
}

// Get returns one enriched activity by id
func (s *ActivityService) Get(ctx context.Context, id uint) (*model.Activity, error) {
	var activity model.Activity
	err := s.enriched(s.db.WithContext(ctx)).First(&activity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("activity")
		}
		return nil, apperr.Infrastructure(err)
	}
	return &activity, nil
}

// ListTags returns every stored tag
func (s *ActivityService) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := s.db.WithContext(ctx).Order("title").Find(&tags).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return tags, nil
}
