package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
	apperrors "github.com/festivo/festivo/pkg/errors"
	"github.com/festivo/festivo/pkg/metrics"
)

// InvitationService resolves invitations by token and applies RSVP submissions.
type InvitationService struct {
	db  *gorm.DB
	now func() time.Time
}

// InvitationOption customises the service, primarily for tests.
type InvitationOption func(*InvitationService)

// WithInvitationClock overrides the clock used for deadline checks.
func WithInvitationClock(now func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInvitationService constructs an invitation service once a database handle is supplied.
func NewInvitationService(db *gorm.DB, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	svc := &InvitationService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// GetByToken fetches one invitation with its guest and event attached.
// Unknown tokens surface as the structured NOT_FOUND error.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.ErrNotFound
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Guest").
		Preload("Event").
		Where("invite_token = ?", token).
		First(&invitation).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("invitation service: lookup by token: %w", err)
	}

	return &invitation, nil
}

// SubmitRSVPInput carries one RSVP submission from a guest.
type SubmitRSVPInput struct {
	Token          string
	Status         string
	AttendeesCount int
	CompanionName  *string
	Notes          *string
}

// SubmitRSVP validates and applies an RSVP against the invitation identified
// by token. The check order mirrors the guest's mental model: the response
// window first, then headcount, then companion rules.
func (s *InvitationService) SubmitRSVP(ctx context.Context, input SubmitRSVPInput) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != models.RSVPConfirmed && status != models.RSVPDeclined {
		return nil, apperrors.NewBadRequest("status must be confirmed or declined")
	}

	now := s.now()
	if !invitation.Event.RSVPOpen(now) {
		metrics.RSVPSubmissions.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrRSVPDeadlinePassed
	}

	attendees := input.AttendeesCount
	companion := trimmedOrNil(input.CompanionName)
	notes := trimmedOrNil(input.Notes)

	if status == models.RSVPDeclined {
		// A declined invitation always collapses to a single attendee and no companion.
		attendees = 1
		companion = nil
	} else {
		if attendees < 1 {
			return nil, apperrors.NewBadRequest("attendees_count must be at least 1")
		}

		maxCompanions := invitation.MaxCompanions()
		if attendees > 1 {
			if maxCompanions == 0 {
				metrics.RSVPSubmissions.WithLabelValues("rejected").Inc()
				return nil, apperrors.ErrPlusOneNotAllowed
			}
			if attendees-1 > maxCompanions {
				metrics.RSVPSubmissions.WithLabelValues("rejected").Inc()
				return nil, apperrors.ErrMaxCompanionsExceeded
			}
			if companion == nil {
				metrics.RSVPSubmissions.WithLabelValues("rejected").Inc()
				return nil, apperrors.ErrCompanionNameRequired
			}
		} else {
			companion = nil
		}
	}

	invitation.RSVPStatus = status
	invitation.AttendeesCount = attendees
	invitation.CompanionName = companion
	invitation.Notes = notes
	invitation.RespondedAt = &now

	if err := s.db.WithContext(ctx).Model(invitation).Updates(map[string]any{
		"rsvp_status":     invitation.RSVPStatus,
		"attendees_count": invitation.AttendeesCount,
		"companion_name":  invitation.CompanionName,
		"notes":           invitation.Notes,
		"responded_at":    invitation.RespondedAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("invitation service: persist rsvp: %w", err)
	}

	metrics.RSVPSubmissions.WithLabelValues(status).Inc()
	return invitation, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// InvitationView is the guest-facing projection of an invitation. The legacy
// plus-one boolean never leaves the model layer; clients see only the
// canonical companions_count.
type InvitationView struct {
	ID              string     `json:"id"`
	InviteToken     string     `json:"invite_token"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	RSVPStatus      string     `json:"rsvp_status"`
	AttendeesCount  int        `json:"attendees_count"`
	CompanionName   *string    `json:"companion_name,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CompanionsCount int        `json:"companions_count"`
	CreatedAt       time.Time  `json:"created_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`

	EventName    string     `json:"event_name,omitempty"`
	EventVenue   string     `json:"event_venue,omitempty"`
	EventStarts  *time.Time `json:"event_starts_at,omitempty"`
	RSVPDeadline *time.Time `json:"rsvp_deadline,omitempty"`
}

// NewInvitationView projects a model into its public form.
func NewInvitationView(inv *models.Invitation) InvitationView {
	view := InvitationView{
		ID:              inv.ID,
		InviteToken:     inv.InviteToken,
		RSVPStatus:      inv.RSVPStatus,
		AttendeesCount:  inv.AttendeesCount,
		CompanionName:   inv.CompanionName,
		Notes:           inv.Notes,
		CompanionsCount: inv.MaxCompanions(),
		CreatedAt:       inv.CreatedAt,
		RespondedAt:     inv.RespondedAt,
	}

	if inv.Guest != nil {
		view.FirstName = inv.Guest.FirstName
		view.LastName = inv.Guest.LastName
	}
	if inv.Event != nil {
		view.EventName = inv.Event.Name
		view.EventVenue = inv.Event.Venue
		view.EventStarts = inv.Event.StartsAt
		view.RSVPDeadline = inv.Event.RSVPDeadline
	}

	return view
}
