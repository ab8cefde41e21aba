package guestflow

import (
	"context"
	"strings"
)

const songTextMin = 3

// SongPanel drives the shared song board for one invitation. Board state is
// never mutated optimistically; every successful write re-fetches the list so
// vote counts stay honest.
type SongPanel struct {
	backend Backend
	token   string

	Songs []Song
	Input string
}

// NewSongPanel builds a panel bound to one invitation token.
func NewSongPanel(backend Backend, token string) *SongPanel {
	return &SongPanel{backend: backend, token: token}
}

// Load refreshes the board from the backend.
func (p *SongPanel) Load(ctx context.Context) *FlowError {
	songs, err := p.backend.ListSongs(ctx, p.token)
	if err != nil {
		return Localize(err)
	}
	p.Songs = songs
	return nil
}

// Submit suggests the panel's current input. Length and duplicate checks run
// locally against the loaded board first, so the common rejections never
// cost a round trip. The input is cleared only on success.
func (p *SongPanel) Submit(ctx context.Context) *FlowError {
	text := strings.TrimSpace(p.Input)
	if len([]rune(text)) < songTextMin {
		return &FlowError{Code: "QUERY_TEXT_TOO_SHORT", Message: "Escribe al menos 3 caracteres."}
	}

	lowered := strings.ToLower(text)
	for _, song := range p.Songs {
		if strings.ToLower(strings.TrimSpace(song.QueryText)) == lowered {
			return &FlowError{Code: "DUPLICATE_SONG_REQUEST", Message: flowMessages["DUPLICATE_SONG_REQUEST"]}
		}
	}

	if err := p.backend.SubmitSong(ctx, p.token, text); err != nil {
		return Localize(err)
	}

	p.Input = ""
	return p.Load(ctx)
}

// Vote upvotes a board entry. Voting twice is a local no-op once the loaded
// row already shows i_voted.
func (p *SongPanel) Vote(ctx context.Context, songID string) *FlowError {
	for _, song := range p.Songs {
		if song.ID == songID && song.IVoted {
			return nil
		}
	}

	if err := p.backend.VoteSong(ctx, p.token, songID); err != nil {
		return Localize(err)
	}

	return p.Load(ctx)
}
