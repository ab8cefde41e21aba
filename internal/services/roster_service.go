package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
	apperrors "github.com/festivo/festivo/pkg/errors"
	"github.com/festivo/festivo/pkg/logger"
	"github.com/festivo/festivo/pkg/metrics"
	"github.com/festivo/festivo/pkg/phone"
)

const accessCodeLen = 8

// RosterConfig carries the deployment-level settings the roster panel needs
// to build invite links and outbound messages.
type RosterConfig struct {
	BaseURL         string
	CountryCode     string
	MessageTemplate string
}

// Actor identifies the staff member behind an admin mutation, for the audit
// trail.
type Actor struct {
	StaffUserID string
	Email       string
	IPAddress   string
}

// RosterService backs the staff panel: the full invitation roster, guest
// phone editing, and the mark-as-sent workflow.
type RosterService struct {
	db    *gorm.DB
	audit *AuditService
	cfg   RosterConfig
	now   func() time.Time
}

// NewRosterService wires the roster panel services together.
func NewRosterService(db *gorm.DB, audit *AuditService, cfg RosterConfig) (*RosterService, error) {
	if db == nil {
		return nil, errors.New("roster service: db is required")
	}
	if audit == nil {
		return nil, errors.New("roster service: audit service is required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &RosterService{db: db, audit: audit, cfg: cfg, now: time.Now}, nil
}

// InviteURL builds the shareable guest link for a token.
func (s *RosterService) InviteURL(token string) string {
	return s.cfg.BaseURL + "/i/" + token
}

// AccessCode derives the short door-list code printed next to each guest.
func AccessCode(token string) string {
	if len(token) < accessCodeLen {
		return strings.ToUpper(token)
	}
	return strings.ToUpper(token[:accessCodeLen])
}

// RenderInviteMessage fills the outbound template's placeholders.
func RenderInviteMessage(template, name, inviteURL string) string {
	return strings.NewReplacer("{NOMBRE}", name, "{URL}", inviteURL).Replace(template)
}

// RosterRow is one line of the staff roster with everything the panel shows:
// RSVP state, contact info, and the precomputed share links.
type RosterRow struct {
	GuestID         string     `json:"guest_id"`
	InvitationID    string     `json:"invitation_id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	PhoneE164       *string    `json:"phone_e164,omitempty"`
	RSVPStatus      string     `json:"rsvp_status"`
	AttendeesCount  int        `json:"attendees_count"`
	CompanionsCount int        `json:"companions_count"`
	CompanionName   *string    `json:"companion_name,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	LastSentAt      *time.Time `json:"last_sent_at,omitempty"`
	LastSentPhone   *string    `json:"last_sent_phone,omitempty"`

	InviteURL    string  `json:"invite_url"`
	AccessCode   string  `json:"access_code"`
	WhatsAppLink *string `json:"whatsapp_link,omitempty"`
}

// ListInvitations returns the roster for an event ordered by guest name;
// an empty eventID returns every row. The WhatsApp link is present only for
// guests with a phone on file.
func (s *RosterService) ListInvitations(ctx context.Context, eventID string) ([]RosterRow, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("Guest")
	if eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}

	var invitations []models.Invitation
	if err := query.Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("roster service: list: %w", err)
	}

	rows := make([]RosterRow, 0, len(invitations))
	for i := range invitations {
		inv := &invitations[i]
		row := RosterRow{
			InvitationID:    inv.ID,
			GuestID:         inv.GuestID,
			RSVPStatus:      inv.RSVPStatus,
			AttendeesCount:  inv.AttendeesCount,
			CompanionsCount: inv.MaxCompanions(),
			CompanionName:   inv.CompanionName,
			Notes:           inv.Notes,
			RespondedAt:     inv.RespondedAt,
			LastSentAt:      inv.LastSentAt,
			LastSentPhone:   inv.LastSentPhone,
			InviteURL:       s.InviteURL(inv.InviteToken),
			AccessCode:      AccessCode(inv.InviteToken),
		}

		if inv.Guest != nil {
			row.FirstName = inv.Guest.FirstName
			row.LastName = inv.Guest.LastName
			row.PhoneE164 = inv.Guest.PhoneE164

			if inv.Guest.PhoneE164 != nil {
				message := RenderInviteMessage(s.cfg.MessageTemplate, inv.Guest.GivenName(), row.InviteURL)
				link := phone.WhatsAppLink(*inv.Guest.PhoneE164, message)
				row.WhatsAppLink = &link
			}
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FirstName != rows[j].FirstName {
			return rows[i].FirstName < rows[j].FirstName
		}
		return rows[i].LastName < rows[j].LastName
	})

	return rows, nil
}

// RosterSummary aggregates the panel's headline numbers.
type RosterSummary struct {
	Total              int `json:"total"`
	Pending            int `json:"pending"`
	Confirmed          int `json:"confirmed"`
	Declined           int `json:"declined"`
	ConfirmedAttendees int `json:"confirmed_attendees"`
}

// Summary tallies RSVP state across the roster.
func (s *RosterService) Summary(ctx context.Context) (RosterSummary, error) {
	ctx = ensureContext(ctx)

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).Find(&invitations).Error; err != nil {
		return RosterSummary{}, fmt.Errorf("roster service: summary: %w", err)
	}

	summary := RosterSummary{Total: len(invitations)}
	for i := range invitations {
		switch invitations[i].RSVPStatus {
		case models.RSVPConfirmed:
			summary.Confirmed++
			summary.ConfirmedAttendees += invitations[i].AttendeesCount
		case models.RSVPDeclined:
			summary.Declined++
		default:
			summary.Pending++
		}
	}

	return summary, nil
}

// UpdatePhoneInput carries a roster phone edit.
type UpdatePhoneInput struct {
	GuestID string
	Phone   string
	Actor   Actor
}

// UpdateGuestPhone normalizes and stores a guest's phone. An empty input
// clears the number.
func (s *RosterService) UpdateGuestPhone(ctx context.Context, input UpdatePhoneInput) (*models.Guest, error) {
	ctx = ensureContext(ctx)

	var guest models.Guest
	err := s.db.WithContext(ctx).First(&guest, "id = ?", input.GuestID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("roster service: guest lookup: %w", err)
	}

	raw := strings.TrimSpace(input.Phone)
	if raw == "" {
		guest.PhoneE164 = nil
	} else {
		normalized, err := phone.Normalize(raw, s.cfg.CountryCode)
		if err != nil {
			return nil, apperrors.NewBadRequest("phone number must have 9 digits or include the country code")
		}
		guest.PhoneE164 = &normalized
	}

	if err := s.db.WithContext(ctx).Model(&guest).Update("phone_e164", guest.PhoneE164).Error; err != nil {
		return nil, fmt.Errorf("roster service: persist phone: %w", err)
	}

	s.auditLog(ctx, input.Actor, AuditActionPhoneUpdated, guest.ID, map[string]any{
		"phone_set": guest.PhoneE164 != nil,
	})

	return &guest, nil
}

// MarkSentInput identifies the invitation being marked and who marked it.
// The panel addresses rows by guest, the scanner by invitation; either ID
// resolves the same row.
type MarkSentInput struct {
	InvitationID string
	GuestID      string
	Actor        Actor
}

// SendResult is what the panel needs after marking an invitation sent: the
// rendered message and the WhatsApp link to actually open.
type SendResult struct {
	InvitationID string    `json:"invitation_id"`
	PhoneE164    string    `json:"phone_e164"`
	InviteURL    string    `json:"invite_url"`
	Message      string    `json:"message"`
	WhatsAppLink string    `json:"whatsapp_link"`
	SentAt       time.Time `json:"sent_at"`
}

// MarkInvitationSent renders the outbound message for the invitation's guest,
// records the send, and stamps the invitation. The guest must have a phone on
// file first.
func (s *RosterService) MarkInvitationSent(ctx context.Context, input MarkSentInput) (*SendResult, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("Guest")
	if input.InvitationID != "" {
		query = query.Where("id = ?", input.InvitationID)
	} else if input.GuestID != "" {
		query = query.Where("guest_id = ?", input.GuestID)
	} else {
		return nil, apperrors.NewBadRequest("invitation or guest id is required")
	}

	var invitation models.Invitation
	err := query.First(&invitation).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("roster service: invitation lookup: %w", err)
	}

	if invitation.Guest == nil || invitation.Guest.PhoneE164 == nil {
		return nil, apperrors.NewBadRequest("guest has no phone number on file")
	}

	inviteURL := s.InviteURL(invitation.InviteToken)
	message := RenderInviteMessage(s.cfg.MessageTemplate, invitation.Guest.GivenName(), inviteURL)
	destination := *invitation.Guest.PhoneE164
	now := s.now()

	send := &models.OutboundSend{
		GuestID:      invitation.GuestID,
		InvitationID: invitation.ID,
		PhoneE164:    destination,
		InviteURL:    inviteURL,
		Payload: datatypes.JSONMap{
			"message":  message,
			"template": s.cfg.MessageTemplate,
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(send).Error; err != nil {
			return fmt.Errorf("record send: %w", err)
		}
		return tx.Model(&invitation).Updates(map[string]any{
			"last_sent_at":    now,
			"last_sent_phone": destination,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("roster service: mark sent: %w", err)
	}

	metrics.OutboundSends.Inc()
	s.auditLog(ctx, input.Actor, AuditActionInvitationSent, invitation.ID, map[string]any{
		"phone": destination,
	})

	return &SendResult{
		InvitationID: invitation.ID,
		PhoneE164:    destination,
		InviteURL:    inviteURL,
		Message:      message,
		WhatsAppLink: phone.WhatsAppLink(destination, message),
		SentAt:       now,
	}, nil
}

// auditLog records the entry without failing the caller's mutation.
func (s *RosterService) auditLog(ctx context.Context, actor Actor, action, targetID string, metadata map[string]any) {
	entry := AuditEntry{
		StaffEmail: actor.Email,
		Action:     action,
		TargetID:   targetID,
		IPAddress:  actor.IPAddress,
		Metadata:   metadata,
	}
	if actor.StaffUserID != "" {
		id := actor.StaffUserID
		entry.StaffUserID = &id
	}

	if err := s.audit.Log(ctx, entry); err != nil {
		logger.WithModule("roster").Warn("audit log write failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
