package models

import "time"

// Event describes the celebration an invitation belongs to. A deployment
// normally carries a single event, created at bootstrap from configuration.
type Event struct {
	BaseModel

	Name      string     `gorm:"type:varchar(160);not null" json:"name"`
	Celebrant string     `gorm:"type:varchar(160)" json:"celebrant"`
	Venue     string     `gorm:"type:varchar(200)" json:"venue"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`

	// RSVPDeadline closes RSVP submissions when set. Nil keeps them open.
	RSVPDeadline *time.Time `json:"rsvp_deadline,omitempty"`
}

// RSVPOpen reports whether an RSVP submitted at the given instant is accepted.
func (e *Event) RSVPOpen(at time.Time) bool {
	if e == nil || e.RSVPDeadline == nil {
		return true
	}
	return !at.After(*e.RSVPDeadline)
}
