package model

import (
	"time"

	"gorm.io/gorm"
)

// Activity represents a scheduled volunteering opportunity published by an NPO
type Activity struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Title              string    `json:"title" gorm:"type:varchar(200);not null"`
	Description        string    `json:"description" gorm:"type:text;not null"`
	StartTimestamp     time.Time `json:"start_timestamp" gorm:"not null;index"`
	EndTimestamp       time.Time `json:"end_timestamp" gorm:"not null"`
	Location           string    `json:"location" gorm:"type:varchar(255);not null"`
	PrimaryContactInfo string    `json:"primary_contact_info" gorm:"type:varchar(255);not null"`
	// Capacity is advisory display metadata, not an enforced cap on signups
	Capacity         *int           `json:"capacity,omitempty"`
	NpoID            uint           `json:"npo_id" gorm:"index;not null"`
	CreatedByAdminID uint           `json:"created_by_admin_id" gorm:"index;not null"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Npo            Npo          `json:"npo,omitempty" gorm:"foreignKey:NpoID"`
	CreatedByAdmin User         `json:"created_by_admin,omitempty" gorm:"foreignKey:CreatedByAdminID"`
	Tags           []Tag        `json:"tags" gorm:"many2many:activity_tags"`
	Enrollments    []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:ActivityID"`
}
