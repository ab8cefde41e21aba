package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
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
	)
}
