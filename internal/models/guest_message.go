package models

// GuestMessage is a single well-wish left by a guest. The unique index on
// InvitationID enforces the one-message-per-invitation rule at the storage
// layer; the service surfaces violations as MESSAGE_ALREADY_SUBMITTED.
type GuestMessage struct {
	BaseModel

	EventID      string `gorm:"type:uuid;not null;index" json:"-"`
	InvitationID string `gorm:"type:uuid;not null;uniqueIndex" json:"invitation_id"`
	GuestName    string `gorm:"type:varchar(160);not null" json:"guest_name"`
	MessageText  string `gorm:"type:varchar(300);not null" json:"message_text"`

	Invitation *Invitation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
