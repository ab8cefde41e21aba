package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
	apperrors "github.com/festivo/festivo/pkg/errors"
)

const defaultMessageTextMax = 100

// MessageService manages the guest message wall. Each invitation contributes
// at most one message; repeat submissions are rejected with a structured code
// so the guest flow can latch its form shut.
type MessageService struct {
	db          *gorm.DB
	invitations *InvitationService
	maxLength   int
}

// NewMessageService wires the message wall on top of the invitation lookup.
func NewMessageService(db *gorm.DB, invitations *InvitationService, maxLength int) (*MessageService, error) {
	if db == nil {
		return nil, errors.New("message service: db is required")
	}
	if invitations == nil {
		return nil, errors.New("message service: invitation service is required")
	}
	if maxLength <= 0 {
		maxLength = defaultMessageTextMax
	}
	return &MessageService{db: db, invitations: invitations, maxLength: maxLength}, nil
}

// ListByToken returns the full message wall for the event the token belongs
// to, newest first.
func (s *MessageService) ListByToken(ctx context.Context, token string) ([]models.GuestMessage, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var messages []models.GuestMessage
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", invitation.EventID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("message service: list: %w", err)
	}

	return messages, nil
}

// SubmitInput carries one message submission.
type SubmitMessageInput struct {
	Token string
	Text  string
}

// Submit records the guest's message. A second submission for the same
// invitation fails with MESSAGE_ALREADY_SUBMITTED, whether it is caught by the
// pre-check or by the unique index under a concurrent double-tap.
func (s *MessageService) Submit(ctx context.Context, input SubmitMessageInput) (*models.GuestMessage, error) {
	ctx = ensureContext(ctx)

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewBadRequest("message text is required")
	}
	if len([]rune(text)) > s.maxLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("message text exceeds %d characters", s.maxLength))
	}

	invitation, err := s.invitations.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.GuestMessage{}).
		Where("invitation_id = ?", invitation.ID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("message service: existence check: %w", err)
	}
	if existing > 0 {
		return nil, apperrors.ErrMessageAlreadySubmitted
	}

	message := &models.GuestMessage{
		EventID:      invitation.EventID,
		InvitationID: invitation.ID,
		GuestName:    invitation.Guest.ShortName(),
		MessageText:  text,
	}

	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrMessageAlreadySubmitted
		}
		return nil, fmt.Errorf("message service: create: %w", err)
	}

	return message, nil
}

// isUniqueViolation sniffs driver-level unique constraint failures. gorm
// normalizes this for most drivers; the string checks cover sqlite and
// postgres messages that slip through as raw errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
