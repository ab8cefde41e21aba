package models

import "strings"

// SongRequest is a guest suggestion for the shared playlist. QueryNorm holds
// the lower-cased trimmed text; the composite unique index on
// (EventID, QueryNorm) gives the event-wide case-insensitive duplicate rule.
type SongRequest struct {
	BaseModel

	EventID      string `gorm:"type:uuid;not null;index;uniqueIndex:idx_song_event_query" json:"-"`
	InvitationID string `gorm:"type:uuid;not null;index" json:"-"`
	QueryText    string `gorm:"type:varchar(200);not null" json:"query_text"`
	QueryNorm    string `gorm:"type:varchar(200);not null;uniqueIndex:idx_song_event_query" json:"-"`
	GuestName    string `gorm:"type:varchar(80);not null" json:"guest_name"`

	Votes []SongVote `gorm:"foreignKey:SongRequestID" json:"-"`

	Invitation *Invitation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// NormalizeQuery produces the canonical comparison form of request text.
func NormalizeQuery(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Normalise fills QueryNorm from QueryText.
func (s *SongRequest) Normalise() {
	s.QueryText = strings.TrimSpace(s.QueryText)
	s.QueryNorm = NormalizeQuery(s.QueryText)
}
