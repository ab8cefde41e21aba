package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountDisabled is returned for deactivated staff accounts.
	ErrAccountDisabled = errors.New("auth: account disabled")
)

// AuthenticateInput carries the credentials and client context of a login attempt.
type AuthenticateInput struct {
	Email     string
	Password  string
	IPAddress string
}

// Authenticate verifies staff credentials against the database. Lookup
// failures and password mismatches are indistinguishable to callers.
func Authenticate(db *gorm.DB, input AuthenticateInput) (*models.StaffUser, error) {
	if db == nil {
		return nil, errors.New("auth: db is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var staff models.StaffUser
	err := db.Where("email = ?", email).First(&staff).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("auth: lookup staff user: %w", err)
	}

	if !staff.IsActive {
		return nil, ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(input.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	staff.LastLoginAt = &now
	staff.LastLoginIP = strings.TrimSpace(input.IPAddress)
	if err := db.Model(&staff).Updates(map[string]any{
		"last_login_at": staff.LastLoginAt,
		"last_login_ip": staff.LastLoginIP,
	}).Error; err != nil {
		return nil, fmt.Errorf("auth: record login: %w", err)
	}

	return &staff, nil
}

// HashPassword produces a bcrypt hash suitable for StaffUser.PasswordHash.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("auth: password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
