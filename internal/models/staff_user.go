package models

import "time"

// StaffUser is an authenticated member of the event staff: the host family
// and door personnel. There is no role hierarchy; every staff user sees the
// whole admin surface.
type StaffUser struct {
	BaseModel

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `gorm:"type:varchar(120)" json:"display_name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `json:"-"`
}
