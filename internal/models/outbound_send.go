package models

import "gorm.io/datatypes"

// OutboundSend logs one "mark as sent" action for an invitation. The payload
// snapshot keeps the exact rendered message and destination so later template
// edits do not rewrite history.
type OutboundSend struct {
	BaseModel

	GuestID      string `gorm:"type:uuid;not null;index" json:"guest_id"`
	InvitationID string `gorm:"type:uuid;not null;index" json:"invitation_id"`
	PhoneE164    string `gorm:"type:varchar(20);not null" json:"phone_e164"`
	InviteURL    string `gorm:"type:varchar(300);not null" json:"invite_url"`

	Payload datatypes.JSONMap `json:"payload"`

	Invitation *Invitation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
