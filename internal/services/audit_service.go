package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
)

// Audit actions recorded against the roster.
const (
	AuditActionPhoneUpdated    = "guest.phone_updated"
	AuditActionInvitationSent  = "invitation.marked_sent"
	AuditActionStaffLoggedIn   = "staff.logged_in"
	AuditActionStaffLoggedOut  = "staff.logged_out"
	AuditActionRSVPOverridden  = "invitation.rsvp_overridden"
	AuditActionTicketVerified  = "invitation.ticket_verified"
)

// AuditEntry captures a single audit event to persist.
type AuditEntry struct {
	StaffUserID *string
	StaffEmail  string
	Action      string
	TargetID    string
	IPAddress   string
	Metadata    map[string]any
}

// AuditService persists and retrieves staff audit log entries.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db}, nil
}

// Log stores an audit entry, marshalling metadata into JSON form.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}

	payload := ""
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		payload = string(encoded)
	}

	log := models.AuditLog{
		Action:     strings.TrimSpace(entry.Action),
		TargetID:   strings.TrimSpace(entry.TargetID),
		StaffEmail: strings.TrimSpace(entry.StaffEmail),
		IPAddress:  strings.TrimSpace(entry.IPAddress),
		Metadata:   payload,
	}

	if entry.StaffUserID != nil && strings.TrimSpace(*entry.StaffUserID) != "" {
		id := strings.TrimSpace(*entry.StaffUserID)
		log.StaffUserID = &id
	}

	if err := s.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("audit service: persist entry: %w", err)
	}
	return nil
}

// List returns recent audit entries, newest first.
func (s *AuditService) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.AuditLog
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit service: list entries: %w", err)
	}
	return logs, nil
}

// PruneOlderThan removes audit rows created before the cutoff and reports how
// many were deleted.
func (s *AuditService) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("audit service: prune entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
