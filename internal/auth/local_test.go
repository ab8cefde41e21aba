package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/database/testutil"
	"github.com/festivo/festivo/internal/models"
)

func seedStaffUser(t *testing.T, db *gorm.DB, password string, active bool) *models.StaffUser {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)

	staff := &models.StaffUser{
		Email:        "host@example.com",
		PasswordHash: hash,
		DisplayName:  "Host",
		IsActive:     active,
	}
	require.NoError(t, db.Create(staff).Error)
	if !active {
		// The column default would override a zero-value false on create.
		require.NoError(t, db.Model(staff).Update("is_active", false).Error)
	}
	return staff
}

func TestAuthenticateSuccessRecordsLogin(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedStaffUser(t, db, "hunter2hunter2", true)

	staff, err := Authenticate(db, AuthenticateInput{
		Email:     " Host@Example.com ",
		Password:  "hunter2hunter2",
		IPAddress: "203.0.113.7",
	})
	require.NoError(t, err)
	require.NotNil(t, staff.LastLoginAt)
	require.Equal(t, "203.0.113.7", staff.LastLoginIP)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedStaffUser(t, db, "hunter2hunter2", true)

	_, err := Authenticate(db, AuthenticateInput{Email: "host@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	_, err := Authenticate(db, AuthenticateInput{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedStaffUser(t, db, "hunter2hunter2", false)

	_, err := Authenticate(db, AuthenticateInput{Email: "host@example.com", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("   ")
	require.Error(t, err)
}
