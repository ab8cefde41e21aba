package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
	apperrors "github.com/festivo/festivo/pkg/errors"
	"github.com/festivo/festivo/pkg/metrics"
)

const (
	defaultSongRequestsPerGuest = 5
	defaultSongTextMax          = 120
	songTextMin                 = 3
)

// SongLimits bounds what a single invitation may submit to the song board.
type SongLimits struct {
	RequestsPerGuest int
	TextMax          int
}

func (l SongLimits) withDefaults() SongLimits {
	if l.RequestsPerGuest <= 0 {
		l.RequestsPerGuest = defaultSongRequestsPerGuest
	}
	if l.TextMax <= 0 {
		l.TextMax = defaultSongTextMax
	}
	return l
}

// SongService runs the shared song-request board: suggestions, the
// per-invitation quota, event-wide deduplication, and one-vote-per-viewer.
type SongService struct {
	db          *gorm.DB
	invitations *InvitationService
	limits      SongLimits
	notify      func(eventID string)
}

// SongOption customises the service.
type SongOption func(*SongService)

// WithSongBoardNotifier registers a callback fired after every successful
// write to the board, used to fan updates out to connected listeners.
func WithSongBoardNotifier(notify func(eventID string)) SongOption {
	return func(s *SongService) {
		s.notify = notify
	}
}

// NewSongService wires the song board on top of the invitation lookup.
func NewSongService(db *gorm.DB, invitations *InvitationService, limits SongLimits, opts ...SongOption) (*SongService, error) {
	if db == nil {
		return nil, errors.New("song service: db is required")
	}
	if invitations == nil {
		return nil, errors.New("song service: invitation service is required")
	}

	svc := &SongService{db: db, invitations: invitations, limits: limits.withDefaults()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SongView is one board row as the viewer sees it: the vote total plus
// whether this viewer already voted.
type SongView struct {
	ID         string    `json:"id"`
	QueryText  string    `json:"query_text"`
	GuestName  string    `json:"guest_name"`
	VotesCount int       `json:"votes_count"`
	IVoted     bool      `json:"i_voted"`
	Mine       bool      `json:"mine"`
	CreatedAt  time.Time `json:"created_at"`
}

// List returns the board for the viewer's event, most voted first, ties
// broken oldest first.
func (s *SongService) List(ctx context.Context, token string) ([]SongView, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var requests []models.SongRequest
	if err := s.db.WithContext(ctx).
		Preload("Votes").
		Where("event_id = ?", invitation.EventID).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("song service: list: %w", err)
	}

	views := make([]SongView, 0, len(requests))
	for _, req := range requests {
		view := SongView{
			ID:        req.ID,
			QueryText: req.QueryText,
			GuestName: req.GuestName,
			Mine:      req.InvitationID == invitation.ID,
			CreatedAt: req.CreatedAt,
		}
		view.VotesCount = len(req.Votes)
		for _, vote := range req.Votes {
			if vote.InvitationID == invitation.ID {
				view.IVoted = true
				break
			}
		}
		views = append(views, view)
	}

	// Stable sort keeps the oldest-first order within equal vote counts.
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].VotesCount > views[j].VotesCount
	})

	return views, nil
}

// SubmitSongInput carries one song suggestion.
type SubmitSongInput struct {
	Token string
	Text  string
}

// Submit adds a suggestion to the board after quota, length, and duplicate
// checks. Duplicates are event-wide and case-insensitive.
func (s *SongService) Submit(ctx context.Context, input SubmitSongInput) (*models.SongRequest, error) {
	ctx = ensureContext(ctx)

	text := strings.TrimSpace(input.Text)
	if len([]rune(text)) < songTextMin {
		metrics.SongRequests.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewBadRequest(fmt.Sprintf("song text must be at least %d characters", songTextMin))
	}
	if len([]rune(text)) > s.limits.TextMax {
		metrics.SongRequests.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrQueryTextTooLong
	}

	invitation, err := s.invitations.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	var mine int64
	if err := s.db.WithContext(ctx).
		Model(&models.SongRequest{}).
		Where("invitation_id = ?", invitation.ID).
		Count(&mine).Error; err != nil {
		return nil, fmt.Errorf("song service: quota check: %w", err)
	}
	if mine >= int64(s.limits.RequestsPerGuest) {
		metrics.SongRequests.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrSuggestionLimitReached
	}

	request := &models.SongRequest{
		EventID:      invitation.EventID,
		InvitationID: invitation.ID,
		QueryText:    text,
		GuestName:    invitation.Guest.ShortName(),
	}
	request.Normalise()

	var dup int64
	if err := s.db.WithContext(ctx).
		Model(&models.SongRequest{}).
		Where("event_id = ? AND query_norm = ?", invitation.EventID, request.QueryNorm).
		Count(&dup).Error; err != nil {
		return nil, fmt.Errorf("song service: duplicate check: %w", err)
	}
	if dup > 0 {
		metrics.SongRequests.WithLabelValues("duplicate").Inc()
		return nil, apperrors.ErrDuplicateSongRequest
	}

	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		if isUniqueViolation(err) {
			metrics.SongRequests.WithLabelValues("duplicate").Inc()
			return nil, apperrors.ErrDuplicateSongRequest
		}
		return nil, fmt.Errorf("song service: create: %w", err)
	}

	metrics.SongRequests.WithLabelValues("accepted").Inc()
	s.broadcast(invitation.EventID)
	return request, nil
}

// Vote records an upvote from the viewer's invitation on a board entry.
func (s *SongService) Vote(ctx context.Context, token, songRequestID string) error {
	ctx = ensureContext(ctx)

	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	var request models.SongRequest
	err = s.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", songRequestID, invitation.EventID).
		First(&request).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case err != nil:
		return fmt.Errorf("song service: vote lookup: %w", err)
	}

	vote := &models.SongVote{
		SongRequestID: request.ID,
		InvitationID:  invitation.ID,
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.SongVote{}).
		Where("song_request_id = ? AND invitation_id = ?", request.ID, invitation.ID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("song service: vote check: %w", err)
	}
	if existing > 0 {
		return apperrors.ErrAlreadyVoted
	}

	if err := s.db.WithContext(ctx).Create(vote).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyVoted
		}
		return fmt.Errorf("song service: vote create: %w", err)
	}

	metrics.SongVotes.Inc()
	s.broadcast(invitation.EventID)
	return nil
}

func (s *SongService) broadcast(eventID string) {
	if s.notify != nil {
		s.notify(eventID)
	}
}
