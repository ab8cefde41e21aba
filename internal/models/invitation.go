package models

import "time"

// RSVP statuses an invitation can carry.
const (
	RSVPPending   = "pending"
	RSVPConfirmed = "confirmed"
	RSVPDeclined  = "declined"
)

// Invitation binds a guest to an event through an opaque token. The token is
// the only credential a guest holds; knowing it grants access to the
// invitation page, the song board, and the message wall.
//
// Companion allowance carries two schemas: the legacy PlusOneAllowed boolean
// from early rosters and the newer CompanionsCount integer. MaxCompanions
// collapses them into one canonical value; everything above the model layer
// sees only the canonical form.
type Invitation struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index" json:"event_id"`
	GuestID string `gorm:"type:uuid;not null;index" json:"guest_id"`

	InviteToken string `gorm:"type:uuid;uniqueIndex;not null" json:"invite_token"`

	RSVPStatus     string  `gorm:"type:varchar(20);not null;default:pending" json:"rsvp_status"`
	AttendeesCount int     `gorm:"not null;default:1" json:"attendees_count"`
	CompanionName  *string `gorm:"type:varchar(300)" json:"companion_name,omitempty"`
	Notes          *string `gorm:"type:text" json:"notes,omitempty"`

	PlusOneAllowed  bool `gorm:"default:false" json:"plus_one_allowed"`
	CompanionsCount *int `json:"companions_count,omitempty"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`

	LastSentAt    *time.Time `json:"last_sent_at,omitempty"`
	LastSentPhone *string    `gorm:"type:varchar(20)" json:"last_sent_phone,omitempty"`

	Event *Event `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Guest *Guest `gorm:"constraint:OnDelete:CASCADE" json:"guest,omitempty"`
}

// MaxCompanions resolves the dual-schema companion allowance once, at the
// data boundary: an explicit count wins, the legacy boolean grants one,
// anything else grants none.
func (i *Invitation) MaxCompanions() int {
	if i == nil {
		return 0
	}
	if i.CompanionsCount != nil {
		if *i.CompanionsCount < 0 {
			return 0
		}
		return *i.CompanionsCount
	}
	if i.PlusOneAllowed {
		return 1
	}
	return 0
}

// Responded reports whether the guest already answered.
func (i *Invitation) Responded() bool {
	return i.RSVPStatus == RSVPConfirmed || i.RSVPStatus == RSVPDeclined
}
