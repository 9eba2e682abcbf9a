package model

import "time"

// Enrollment records that a user is signed up for an activity, optionally
// with the hours an administrator credited after the fact. The composite
// unique index is the safeguard against duplicate signups: concurrent
// attempts race on it and exactly one wins.
//
// Rows are hard-deleted on withdrawal so a user can sign up again later;
// a soft-delete column would keep blocking the unique index.
type Enrollment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_activity"`
	ActivityID uint      `json:"activity_id" gorm:"not null;uniqueIndex:idx_user_activity"`
	HoursPut   *float64  `json:"hours_put,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Activity Activity `json:"activity,omitempty" gorm:"foreignKey:ActivityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
