// Package guestflow holds the client-side state machines behind the guest
// pages: the RSVP form, the song-request panel, and the message board. The
// flows are pure Go over a Backend interface, so every rule the pages enforce
// before touching the network is testable without a server.
//
// All guest-facing copy is Spanish; the flows translate structured error
// codes from the backend into that copy.
package guestflow

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/festivo/festivo/pkg/errors"
)

// Invitation is the client projection of an invitation. It still carries both
// companion-allowance schemas because rosters in the wild contain rows written
// under either one.
type Invitation struct {
	Token           string
	FirstName       string
	LastName        string
	RSVPStatus      string
	AttendeesCount  int
	CompanionName   string
	Notes           string
	PlusOneAllowed  bool
	CompanionsCount *int
	RespondedAt     *time.Time
}

// RSVP statuses, mirrored from the wire contract.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// MaxCompanions collapses the dual allowance schema: an explicit count wins,
// the legacy boolean grants one, anything else grants none.
func MaxCompanions(inv *Invitation) int {
	if inv == nil {
		return 0
	}
	if inv.CompanionsCount != nil {
		if *inv.CompanionsCount < 0 {
			return 0
		}
		return *inv.CompanionsCount
	}
	if inv.PlusOneAllowed {
		return 1
	}
	return 0
}

// Responded reports whether the guest already answered.
func (inv *Invitation) Responded() bool {
	return inv.RSVPStatus == StatusConfirmed || inv.RSVPStatus == StatusDeclined
}

// Message is one entry on the message wall.
type Message struct {
	ID        string
	GuestName string
	Text      string
	CreatedAt time.Time

	// Pending marks an optimistic local entry not yet confirmed remotely.
	Pending bool
}

// Song is one row on the song board as the viewer sees it.
type Song struct {
	ID         string
	QueryText  string
	GuestName  string
	VotesCount int
	IVoted     bool
	Mine       bool
}

// RSVPSubmission is the payload the RSVP flow sends upward.
type RSVPSubmission struct {
	Status         string
	AttendeesCount int
	CompanionName  string
	Notes          string
}

// Backend is the RPC surface the flows run against. Implementations return
// structured AppError codes for rule violations; anything else is treated as
// a generic failure.
type Backend interface {
	GetInvitation(ctx context.Context, token string) (*Invitation, error)
	SubmitRSVP(ctx context.Context, token string, submission RSVPSubmission) (*Invitation, error)
	ListMessages(ctx context.Context, token string) ([]Message, error)
	SubmitMessage(ctx context.Context, token, text string) (*Message, error)
	ListSongs(ctx context.Context, token string) ([]Song, error)
	SubmitSong(ctx context.Context, token, text string) error
	VoteSong(ctx context.Context, token, songID string) error
}

// FlowError is a guest-visible failure: a structured code plus the localized
// copy the page shows.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string { return e.Message }

// Guest-visible copy per structured code. Unknown codes fall through to the
// generic retry line.
var flowMessages = map[string]string{
	"RSVP_DEADLINE_PASSED":      "El plazo para confirmar asistencia ya terminó.",
	"PLUS_ONE_NOT_ALLOWED":      "Tu invitación no incluye acompañantes.",
	"COMPANION_NAME_REQUIRED":   "Ingresa el nombre de tu acompañante.",
	"MAX_COMPANIONS_EXCEEDED":   "Superaste el número de acompañantes permitido.",
	"MESSAGE_ALREADY_SUBMITTED": "Ya dejaste tu mensaje, ¡gracias!",
	"SUGGESTION_LIMIT_REACHED":  "Ya alcanzaste el límite de canciones sugeridas.",
	"QUERY_TEXT_TOO_LONG":       "El nombre de la canción es demasiado largo.",
	"DUPLICATE_SONG_REQUEST":    "Esa canción ya está en la lista.",
	"ALREADY_VOTED":             "Ya votaste por esta canción.",
	"NOT_FOUND":                 "No encontramos tu invitación.",
}

const genericFlowMessage = "Ocurrió un error. Inténtalo de nuevo."

// Localize turns any backend error into a FlowError with guest-visible copy.
func Localize(err error) *FlowError {
	if err == nil {
		return nil
	}
	code := apperrors.Code(err)
	if msg, ok := flowMessages[code]; ok {
		return &FlowError{Code: code, Message: msg}
	}
	return &FlowError{Code: code, Message: genericFlowMessage}
}

// AccessCode derives the short door-list code shown on the confirmation
// screen: the first eight runes of the token, upper-cased.
func AccessCode(token string) string {
	runes := []rune(token)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return strings.ToUpper(string(runes))
}
