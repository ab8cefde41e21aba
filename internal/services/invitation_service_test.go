package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/database/testutil"
	"github.com/festivo/festivo/internal/models"
	apperrors "github.com/festivo/festivo/pkg/errors"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func seedInvitation(t *testing.T, db *gorm.DB, mutate func(*models.Event, *models.Invitation)) *models.Invitation {
	t.Helper()

	deadline := time.Now().Add(72 * time.Hour)
	starts := time.Now().Add(96 * time.Hour)
	event := &models.Event{
		Name:         "Quince de Valeria",
		Celebrant:    "Valeria",
		Venue:        "Salón Costa Verde",
		StartsAt:     &starts,
		RSVPDeadline: &deadline,
	}

	guest := &models.Guest{FirstName: "Carlos", LastName: "Ramos"}
	invitation := &models.Invitation{
		InviteToken:    uuid.NewString(),
		RSVPStatus:     models.RSVPPending,
		AttendeesCount: 1,
	}

	if mutate != nil {
		mutate(event, invitation)
	}

	require.NoError(t, db.Create(event).Error)
	guest.EventID = event.ID
	require.NoError(t, db.Create(guest).Error)
	invitation.EventID = event.ID
	invitation.GuestID = guest.ID
	require.NoError(t, db.Create(invitation).Error)

	return invitation
}

func TestInvitationServiceGetByToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewInvitationService(db)
	require.NoError(t, err)

	seeded := seedInvitation(t, db, nil)

	found, err := svc.GetByToken(context.Background(), seeded.InviteToken)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, found.ID)
	require.NotNil(t, found.Guest)
	require.Equal(t, "Carlos", found.Guest.FirstName)
	require.NotNil(t, found.Event)

	_, err = svc.GetByToken(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetByToken(context.Background(), "   ")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInvitationServiceSubmitRSVPConfirm(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewInvitationService(db)
	require.NoError(t, err)

	seeded := seedInvitation(t, db, func(_ *models.Event, inv *models.Invitation) {
		inv.CompanionsCount = intPtr(2)
	})

	updated, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
		Token:          seeded.InviteToken,
		Status:         models.RSVPConfirmed,
		AttendeesCount: 3,
		CompanionName:  strPtr("  Ana , Luis  "),
	})
	require.NoError(t, err)
	require.Equal(t, models.RSVPConfirmed, updated.RSVPStatus)
	require.Equal(t, 3, updated.AttendeesCount)
	require.NotNil(t, updated.CompanionName)
	require.NotNil(t, updated.RespondedAt)

	var persisted models.Invitation
	require.NoError(t, db.First(&persisted, "id = ?", seeded.ID).Error)
	require.Equal(t, models.RSVPConfirmed, persisted.RSVPStatus)
	require.Equal(t, 3, persisted.AttendeesCount)
}

func TestInvitationServiceSubmitRSVPDeclineNormalizes(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewInvitationService(db)
	require.NoError(t, err)

	seeded := seedInvitation(t, db, func(_ *models.Event, inv *models.Invitation) {
		inv.CompanionsCount = intPtr(3)
	})

	updated, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
		Token:          seeded.InviteToken,
		Status:         models.RSVPDeclined,
		AttendeesCount: 4,
		CompanionName:  strPtr("Ana"),
	})
	require.NoError(t, err)
	require.Equal(t, models.RSVPDeclined, updated.RSVPStatus)
	require.Equal(t, 1, updated.AttendeesCount)
	require.Nil(t, updated.CompanionName)
}

func TestInvitationServiceSubmitRSVPCompanionRules(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewInvitationService(db)
	require.NoError(t, err)

	t.Run("no allowance", func(t *testing.T) {
		seeded := seedInvitation(t, db, nil)

		_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
			Token:          seeded.InviteToken,
			Status:         models.RSVPConfirmed,
			AttendeesCount: 2,
			CompanionName:  strPtr("Ana"),
		})
		require.ErrorIs(t, err, apperrors.ErrPlusOneNotAllowed)
	})

	t.Run("over allowance", func(t *testing.T) {
		seeded := seedInvitation(t, db, func(_ *models.Event, inv *models.Invitation) {
			inv.CompanionsCount = intPtr(1)
		})

		_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
			Token:          seeded.InviteToken,
			Status:         models.RSVPConfirmed,
			AttendeesCount: 3,
			CompanionName:  strPtr("Ana,Luis"),
		})
		require.ErrorIs(t, err, apperrors.ErrMaxCompanionsExceeded)
	})

	t.Run("missing companion name", func(t *testing.T) {
		seeded := seedInvitation(t, db, func(_ *models.Event, inv *models.Invitation) {
			inv.PlusOneAllowed = true
		})

		_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
			Token:          seeded.InviteToken,
			Status:         models.RSVPConfirmed,
			AttendeesCount: 2,
			CompanionName:  strPtr("   "),
		})
		require.ErrorIs(t, err, apperrors.ErrCompanionNameRequired)
	})

	t.Run("legacy boolean grants one", func(t *testing.T) {
		seeded := seedInvitation(t, db, func(_ *models.Event, inv *models.Invitation) {
			inv.PlusOneAllowed = true
		})

		updated, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
			Token:          seeded.InviteToken,
			Status:         models.RSVPConfirmed,
			AttendeesCount: 2,
			CompanionName:  strPtr("Ana"),
		})
		require.NoError(t, err)
		require.Equal(t, 2, updated.AttendeesCount)
	})
}

func TestInvitationServiceSubmitRSVPDeadline(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	frozen := time.Now()
	svc, err := NewInvitationService(db, WithInvitationClock(func() time.Time { return frozen }))
	require.NoError(t, err)

	seeded := seedInvitation(t, db, func(ev *models.Event, _ *models.Invitation) {
		past := frozen.Add(-time.Hour)
		ev.RSVPDeadline = &past
	})

	_, err = svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
		Token:          seeded.InviteToken,
		Status:         models.RSVPConfirmed,
		AttendeesCount: 1,
	})
	require.ErrorIs(t, err, apperrors.ErrRSVPDeadlinePassed)
}

func TestInvitationServiceSubmitRSVPValidatesInput(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewInvitationService(db)
	require.NoError(t, err)

	seeded := seedInvitation(t, db, nil)

	_, err = svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
		Token:  seeded.InviteToken,
		Status: "maybe",
	})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.SubmitRSVP(context.Background(), SubmitRSVPInput{
		Token:          seeded.InviteToken,
		Status:         models.RSVPConfirmed,
		AttendeesCount: 0,
	})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestInvitationViewCanonicalizesCompanions(t *testing.T) {
	count := 2
	inv := &models.Invitation{
		InviteToken:     uuid.NewString(),
		RSVPStatus:      models.RSVPPending,
		AttendeesCount:  1,
		PlusOneAllowed:  false,
		CompanionsCount: &count,
		Guest:           &models.Guest{FirstName: "Carlos", LastName: "Ramos"},
	}

	view := NewInvitationView(inv)
	require.Equal(t, 2, view.CompanionsCount)
	require.Equal(t, "Carlos", view.FirstName)

	inv.CompanionsCount = nil
	inv.PlusOneAllowed = true
	require.Equal(t, 1, NewInvitationView(inv).CompanionsCount)
}
