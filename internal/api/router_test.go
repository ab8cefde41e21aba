package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/app"
	iauth "github.com/festivo/festivo/internal/auth"
	"github.com/festivo/festivo/internal/database/testutil"
	"github.com/festivo/festivo/internal/models"
	"github.com/festivo/festivo/internal/realtime"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db     *gorm.DB
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	cfg := &app.Config{}
	cfg.Invites.BaseURL = "https://fiesta.example.com"
	cfg.Invites.CountryCode = "51"
	cfg.Invites.MessageTemplate = "Hola {NOMBRE}! {URL}"
	cfg.Limits.SongRequestsPerGuest = 5
	cfg.Limits.SongTextMax = 120
	cfg.Limits.MessageTextMax = 100
	cfg.Realtime.Enabled = true

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "0123456789abcdef0123456789abcdef",
		Issuer:         "festivo-test",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwt, iauth.SessionConfig{
		RefreshTokenTTL: time.Hour,
		RefreshLength:   32,
	})
	require.NoError(t, err)

	router, err := NewRouter(db, cfg, jwt, sessions, realtime.NewHub())
	require.NoError(t, err)

	return &fixture{db: db, router: router}
}

func (f *fixture) seedInvitation(t *testing.T, companions int) *models.Invitation {
	t.Helper()

	deadline := time.Now().Add(72 * time.Hour)
	event := &models.Event{Name: "Quince de Valeria", Celebrant: "Valeria", RSVPDeadline: &deadline}
	require.NoError(t, f.db.Create(event).Error)

	guest := &models.Guest{EventID: event.ID, FirstName: "Carlos", LastName: "Ramos"}
	require.NoError(t, f.db.Create(guest).Error)

	invitation := &models.Invitation{
		EventID:        event.ID,
		GuestID:        guest.ID,
		InviteToken:    uuid.NewString(),
		RSVPStatus:     models.RSVPPending,
		AttendeesCount: 1,
	}
	if companions > 0 {
		invitation.CompanionsCount = &companions
	}
	require.NoError(t, f.db.Create(invitation).Error)
	return invitation
}

func (f *fixture) seedStaff(t *testing.T, email, password string) *models.StaffUser {
	t.Helper()

	hash, err := iauth.HashPassword(password)
	require.NoError(t, err)
	staff := &models.StaffUser{Email: email, PasswordHash: hash, DisplayName: "Staff", IsActive: true}
	require.NoError(t, f.db.Create(staff).Error)
	return staff
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	return envelope.Data
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	tokens := data["tokens"].(map[string]any)
	return tokens["access_token"].(string)
}

func TestHealthRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetInvitationRoute(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 2)

	rec := f.do(t, http.MethodGet, "/api/invitations/"+inv.InviteToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	view := data["invitation"].(map[string]any)
	require.Equal(t, "Carlos", view["first_name"])
	require.Equal(t, float64(2), view["companions_count"])
	require.NotNil(t, data["messages"])

	rec = f.do(t, http.MethodGet, "/api/invitations/"+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRSVPRoute(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 1)

	rec := f.do(t, http.MethodPost, "/api/invitations/"+inv.InviteToken+"/rsvp", gin.H{
		"status":          "confirmed",
		"attendees_count": 2,
		"companion_name":  "Ana",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Over the allowance surfaces the structured code with a 422.
	rec = f.do(t, http.MethodPost, "/api/invitations/"+inv.InviteToken+"/rsvp", gin.H{
		"status":          "confirmed",
		"attendees_count": 5,
		"companion_name":  "Ana,Luis,Juan,Rosa",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "MAX_COMPANIONS_EXCEEDED")

	// Unknown status never reaches the service.
	rec = f.do(t, http.MethodPost, "/api/invitations/"+inv.InviteToken+"/rsvp", gin.H{
		"status": "maybe",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageRoutes(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 0)

	rec := f.do(t, http.MethodPost, "/api/invitations/"+inv.InviteToken+"/messages", gin.H{
		"message_text": "Felicidades!",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/invitations/"+inv.InviteToken+"/messages", gin.H{
		"message_text": "Otra vez",
	}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "MESSAGE_ALREADY_SUBMITTED")

	rec = f.do(t, http.MethodGet, "/api/invitations/"+inv.InviteToken+"/messages", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Felicidades!")
}

func TestSongRoutes(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 0)

	rec := f.do(t, http.MethodPost, "/api/invitations/"+inv.InviteToken+"/songs", gin.H{
		"query_text": "La Bamba",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/invitations/"+inv.InviteToken+"/songs", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	songs := data["songs"].([]any)
	require.Len(t, songs, 1)
	songID := songs[0].(map[string]any)["id"].(string)

	// Voting for an own song still counts once.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/invitations/%s/songs/%s/vote", inv.InviteToken, songID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/invitations/%s/songs/%s/vote", inv.InviteToken, songID), nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "ALREADY_VOTED")
}

func TestTicketRoute(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 0)

	rec := f.do(t, http.MethodGet, "/api/invitations/"+inv.InviteToken+"/ticket", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "RSVP_NOT_CONFIRMED")

	require.NoError(t, f.db.Model(&models.Invitation{}).
		Where("id = ?", inv.ID).
		Update("rsvp_status", models.RSVPConfirmed).Error)

	rec = f.do(t, http.MethodGet, "/api/invitations/"+inv.InviteToken+"/ticket", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Header().Get("X-Access-Code"))
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 0)

	rec := f.do(t, http.MethodGet, "/api/admin/events/"+inv.EventID+"/invitations", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminFlow(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvitation(t, 0)
	f.seedStaff(t, "staff@example.com", "correct horse battery")

	token := f.login(t, "staff@example.com", "correct horse battery")
	authz := map[string]string{"Authorization": "Bearer " + token}

	// Roster listing with summary.
	rec := f.do(t, http.MethodGet, "/api/admin/events/"+inv.EventID+"/invitations", nil, authz)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	require.Len(t, data["invitations"].([]any), 1)

	// Mark sent fails while no phone is on file.
	rec = f.do(t, http.MethodPost, "/api/admin/guests/"+inv.GuestID+"/sent", nil, authz)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Phone update then mark sent.
	rec = f.do(t, http.MethodPatch, "/api/admin/guests/"+inv.GuestID+"/phone", gin.H{"phone": "987 654 321"}, authz)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "+51987654321")

	rec = f.do(t, http.MethodPost, "/api/admin/guests/"+inv.GuestID+"/sent", nil, authz)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = decodeData(t, rec)
	send := data["send"].(map[string]any)
	require.Contains(t, send["whatsapp_link"].(string), "wa.me/51987654321")

	// Door scanner lookup.
	rec = f.do(t, http.MethodGet, "/api/admin/verify/"+inv.InviteToken, nil, authz)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	require.Equal(t, false, data["admitted"])

	// A pasted full invite URL resolves too.
	rec = f.do(t, http.MethodGet, "/api/admin/verify/https://fiesta.example.com/i/"+inv.InviteToken, nil, authz)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedStaff(t, "staff@example.com", "correct horse battery")

	rec := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "staff@example.com",
		"password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "staff@example.com",
		"password": "correct horse battery",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	tokens := data["tokens"].(map[string]any)
	refresh := tokens["refresh_token"].(string)
	access := tokens["access_token"].(string)

	rec = f.do(t, http.MethodGet, "/api/auth/me", nil, map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "staff@example.com")

	rec = f.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Rotation revokes the old refresh token.
	rec = f.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
