package models

import "time"

// StaffSession backs a refresh token issued at login. Only a hash of the
// token is stored; presentation of the raw token proves possession.
type StaffSession struct {
	BaseModel

	StaffUserID      string     `gorm:"type:uuid;not null;index" json:"staff_user_id"`
	RefreshTokenHash string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt        time.Time  `gorm:"index" json:"expires_at"`
	LastUsedAt       time.Time  `json:"last_used_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	IPAddress        string     `json:"-"`
	UserAgent        string     `json:"-"`

	StaffUser *StaffUser `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Active reports whether the session can still be refreshed at the given time.
func (s *StaffSession) Active(at time.Time) bool {
	return s.RevokedAt == nil && at.Before(s.ExpiresAt)
}
