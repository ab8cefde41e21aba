package models

// SongVote records one invitation upvoting one song request. The composite
// unique index enforces the one-vote-per-viewer rule remotely from the UI.
type SongVote struct {
	BaseModel

	SongRequestID string `gorm:"type:uuid;not null;uniqueIndex:idx_vote_song_invitation" json:"song_request_id"`
	InvitationID  string `gorm:"type:uuid;not null;uniqueIndex:idx_vote_song_invitation" json:"invitation_id"`

	SongRequest *SongRequest `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
