package models

import "strings"

// Guest is the contact record behind an invitation. Contact data lives apart
// from the invitation so staff can edit phone numbers without touching RSVP
// state.
type Guest struct {
	BaseModel

	EventID   string  `gorm:"type:uuid;not null;index" json:"event_id"`
	FirstName string  `gorm:"type:varchar(120);not null" json:"first_name"`
	LastName  string  `gorm:"type:varchar(120)" json:"last_name"`
	PhoneE164 *string `gorm:"type:varchar(20)" json:"phone_e164,omitempty"`

	Event *Event `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// FullName joins first and last names for display.
func (g *Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// GivenName returns the first given name, used in message templates.
func (g *Guest) GivenName() string {
	fields := strings.Fields(g.FirstName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ShortName renders an abbreviated public display name such as "Carlos R.",
// used on the shared song-request board.
func (g *Guest) ShortName() string {
	given := g.GivenName()
	last := strings.Fields(g.LastName)
	if len(last) == 0 {
		return given
	}
	initial := []rune(last[0])[0]
	return given + " " + string(initial) + "."
}
