package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/database/testutil"
	"github.com/festivo/festivo/internal/models"
	apperrors "github.com/festivo/festivo/pkg/errors"
)

func newSongFixture(t *testing.T) (*gorm.DB, *SongService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	invitations, err := NewInvitationService(db)
	require.NoError(t, err)
	svc, err := NewSongService(db, invitations, SongLimits{RequestsPerGuest: 2, TextMax: 120})
	require.NoError(t, err)
	return db, svc
}

func TestSongServiceSubmitAndList(t *testing.T) {
	db, svc := newSongFixture(t)
	seeded := seedInvitation(t, db, nil)

	req, err := svc.Submit(context.Background(), SubmitSongInput{
		Token: seeded.InviteToken,
		Text:  "  Mi Gente   - J Balvin  ",
	})
	require.NoError(t, err)
	require.Equal(t, "Mi Gente   - J Balvin", req.QueryText)
	require.Equal(t, "mi gente - j balvin", req.QueryNorm)
	require.Equal(t, "Carlos R.", req.GuestName)

	board, err := svc.List(context.Background(), seeded.InviteToken)
	require.NoError(t, err)
	require.Len(t, board, 1)
	require.True(t, board[0].Mine)
	require.False(t, board[0].IVoted)
	require.Zero(t, board[0].VotesCount)
}

func TestSongServiceSubmitQuota(t *testing.T) {
	db, svc := newSongFixture(t)
	seeded := seedInvitation(t, db, nil)

	_, err := svc.Submit(context.Background(), SubmitSongInput{Token: seeded.InviteToken, Text: "uno dos tres"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), SubmitSongInput{Token: seeded.InviteToken, Text: "cuatro cinco"})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitSongInput{Token: seeded.InviteToken, Text: "seis siete"})
	require.ErrorIs(t, err, apperrors.ErrSuggestionLimitReached)
}

func TestSongServiceSubmitDuplicateAcrossGuests(t *testing.T) {
	db, svc := newSongFixture(t)
	first := seedInvitation(t, db, nil)

	_, err := svc.Submit(context.Background(), SubmitSongInput{Token: first.InviteToken, Text: "Vivir Mi Vida"})
	require.NoError(t, err)

	// Same event, different invitation, different casing and spacing.
	second := &models.Invitation{
		EventID:     first.EventID,
		InviteToken: "token-second-guest",
		RSVPStatus:  models.RSVPPending,
	}
	other := &models.Guest{EventID: first.EventID, FirstName: "Lucía", LastName: "Torres"}
	require.NoError(t, db.Create(other).Error)
	second.GuestID = other.ID
	second.AttendeesCount = 1
	require.NoError(t, db.Create(second).Error)

	_, err = svc.Submit(context.Background(), SubmitSongInput{Token: second.InviteToken, Text: "  vivir  mi  VIDA "})
	require.ErrorIs(t, err, apperrors.ErrDuplicateSongRequest)
}

func TestSongServiceSubmitLengthRules(t *testing.T) {
	db, svc := newSongFixture(t)
	seeded := seedInvitation(t, db, nil)

	_, err := svc.Submit(context.Background(), SubmitSongInput{Token: seeded.InviteToken, Text: " ab "})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Submit(context.Background(), SubmitSongInput{
		Token: seeded.InviteToken,
		Text:  strings.Repeat("x", 121),
	})
	require.ErrorIs(t, err, apperrors.ErrQueryTextTooLong)
}

func TestSongServiceVote(t *testing.T) {
	db, svc := newSongFixture(t)
	author := seedInvitation(t, db, nil)

	req, err := svc.Submit(context.Background(), SubmitSongInput{Token: author.InviteToken, Text: "La Bamba"})
	require.NoError(t, err)

	voterGuest := &models.Guest{EventID: author.EventID, FirstName: "Lucía", LastName: "Torres"}
	require.NoError(t, db.Create(voterGuest).Error)
	voter := &models.Invitation{
		EventID:        author.EventID,
		GuestID:        voterGuest.ID,
		InviteToken:    "token-voter",
		RSVPStatus:     models.RSVPPending,
		AttendeesCount: 1,
	}
	require.NoError(t, db.Create(voter).Error)

	require.NoError(t, svc.Vote(context.Background(), voter.InviteToken, req.ID))

	err = svc.Vote(context.Background(), voter.InviteToken, req.ID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyVoted)

	err = svc.Vote(context.Background(), voter.InviteToken, "no-such-song")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	board, err := svc.List(context.Background(), voter.InviteToken)
	require.NoError(t, err)
	require.Len(t, board, 1)
	require.Equal(t, 1, board[0].VotesCount)
	require.True(t, board[0].IVoted)
	require.False(t, board[0].Mine)
}

func TestSongServiceNotifierFires(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	invitations, err := NewInvitationService(db)
	require.NoError(t, err)

	var notified []string
	svc, err := NewSongService(db, invitations, SongLimits{}, WithSongBoardNotifier(func(eventID string) {
		notified = append(notified, eventID)
	}))
	require.NoError(t, err)

	seeded := seedInvitation(t, db, nil)
	_, err = svc.Submit(context.Background(), SubmitSongInput{Token: seeded.InviteToken, Text: "Bailando"})
	require.NoError(t, err)

	require.Equal(t, []string{seeded.EventID}, notified)
}
