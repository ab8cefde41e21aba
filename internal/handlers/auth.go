package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/festivo/festivo/internal/auth"
	"github.com/festivo/festivo/internal/middleware"
	"github.com/festivo/festivo/internal/models"
	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/errors"
	"github.com/festivo/festivo/pkg/metrics"
	"github.com/festivo/festivo/pkg/response"
)

// AuthHandler manages the staff authentication flows (login/refresh/logout/me).
type AuthHandler struct {
	db       *gorm.DB
	sessions *iauth.SessionService
	audit    *services.AuditService
}

func NewAuthHandler(db *gorm.DB, sessions *iauth.SessionService, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions, audit: audit}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	staff, err := iauth.Authenticate(h.db, iauth.AuthenticateInput{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		// Normalise auth errors to 401
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	pair, _, err := h.sessions.CreateSession(staff, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	_ = h.audit.Log(requestContext(c), services.AuditEntry{
		StaffUserID: &staff.ID,
		StaffEmail:  staff.Email,
		Action:      services.AuditActionStaffLoggedIn,
		IPAddress:   c.ClientIP(),
	})

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"staff": gin.H{
			"id":           staff.ID,
			"email":        staff.Email,
			"display_name": staff.DisplayName,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.sessions.RevokeSession(strings.TrimSpace(req.RefreshToken)); err != nil {
		// Revoking an unknown token is not an error worth surfacing.
		response.Success(c, http.StatusOK, gin.H{"logged_out": true})
		return
	}

	actor := requestActor(c)
	if actor.StaffUserID != "" {
		_ = h.audit.Log(requestContext(c), services.AuditEntry{
			StaffUserID: &actor.StaffUserID,
			StaffEmail:  actor.Email,
			Action:      services.AuditActionStaffLoggedOut,
			IPAddress:   actor.IPAddress,
		})
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	staffID := c.GetString(middleware.CtxStaffIDKey)
	if staffID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var staff models.StaffUser
	if err := h.db.WithContext(requestContext(c)).First(&staff, "id = ?", staffID).Error; err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"staff": gin.H{
			"id":            staff.ID,
			"email":         staff.Email,
			"display_name":  staff.DisplayName,
			"last_login_at": staff.LastLoginAt,
		},
	})
}
