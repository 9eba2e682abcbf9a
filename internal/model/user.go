package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles. ROOT outranks ADMIN, which outranks USER. The ROOT account is
// bootstrapped from configuration and is the only role allowed to promote or
// demote administrators.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
	RoleRoot  = "ROOT"
)

// User represents a volunteer or administrator account
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PhoneNum  *string        `json:"phone_num,omitempty" gorm:"type:varchar(30)"`
	Image     *string        `json:"image,omitempty" gorm:"type:varchar(255)"`
	AboutMe   *string        `json:"about_me,omitempty" gorm:"type:varchar(300)"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	Role      string         `json:"role" gorm:"type:varchar(10);not null;default:'USER'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsAdmin reports whether the user holds administrator privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleRoot
}
