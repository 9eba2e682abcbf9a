package model

import "time"

// Tag is a free-form label attached to activities. The title is the natural
// key: referencing a title that is not yet stored creates it, referencing an
// existing title reuses the row.
type Tag struct {
	Title     string    `json:"title" gorm:"type:varchar(100);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
