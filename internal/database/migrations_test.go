package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/festivo/festivo/internal/models"
)

func TestAutoMigrateCreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	tables := []interface{}{
		&models.Event{},
		&models.Guest{},
		&models.Invitation{},
		&models.GuestMessage{},
		&models.SongRequest{},
		&models.SongVote{},
		&models.OutboundSend{},
		&models.StaffUser{},
		&models.StaffSession{},
		&models.AuditLog{},
	}

	for _, table := range tables {
		require.True(t, migrator.HasTable(table), "expected table for %T to exist", table)
	}
}

func TestAutoMigrateEnforcesSubmissionUniqueness(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	event := &models.Event{Name: "Prueba"}
	require.NoError(t, db.Create(event).Error)

	guest := &models.Guest{EventID: event.ID, FirstName: "Ana", LastName: "Luna"}
	require.NoError(t, db.Create(guest).Error)

	invitation := &models.Invitation{
		EventID:     event.ID,
		GuestID:     guest.ID,
		InviteToken: "b2c8d56e-3c9f-4a3f-9f18-7f1c6f0a9a01",
		RSVPStatus:  models.RSVPPending,
	}
	require.NoError(t, db.Create(invitation).Error)

	// One message per invitation.
	first := &models.GuestMessage{EventID: event.ID, InvitationID: invitation.ID, MessageText: "hola"}
	require.NoError(t, db.Create(first).Error)
	dup := &models.GuestMessage{EventID: event.ID, InvitationID: invitation.ID, MessageText: "otra vez"}
	require.Error(t, db.Create(dup).Error)

	// One vote per song per invitation.
	song := &models.SongRequest{EventID: event.ID, InvitationID: invitation.ID, QueryText: "Mayonesa", QueryNorm: "mayonesa"}
	require.NoError(t, db.Create(song).Error)
	require.NoError(t, db.Create(&models.SongVote{SongRequestID: song.ID, InvitationID: invitation.ID}).Error)
	require.Error(t, db.Create(&models.SongVote{SongRequestID: song.ID, InvitationID: invitation.ID}).Error)

	// One song request per normalised title per event.
	same := &models.SongRequest{EventID: event.ID, InvitationID: invitation.ID, QueryText: "MAYONESA", QueryNorm: "mayonesa"}
	require.Error(t, db.Create(same).Error)
}

func TestAutoMigrateRejectsNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}
