package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records staff actions against the roster.
type AuditLog struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	StaffUserID *string    `gorm:"type:uuid;index" json:"staff_user_id"`
	StaffEmail  string     `json:"staff_email"`
	Action      string     `gorm:"not null;index" json:"action"`
	TargetID    string     `gorm:"index" json:"target_id"`
	Metadata    string     `gorm:"type:json" json:"metadata"`
	IPAddress   string     `json:"ip_address"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	StaffUser   *StaffUser `gorm:"foreignKey:StaffUserID" json:"-"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
