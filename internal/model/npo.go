package model

import (
	"time"

	"gorm.io/gorm"
)

// Npo represents a non-profit organization that owns activities
type Npo struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Logo        *string        `json:"logo,omitempty" gorm:"type:varchar(255)"`
	Website     *string        `json:"website,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Activities []Activity `json:"activities,omitempty" gorm:"foreignKey:NpoID"`
}
