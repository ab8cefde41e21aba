package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/response"
)

// AdminHandler serves the staff roster panel and the door-staff scanner.
type AdminHandler struct {
	roster      *services.RosterService
	invitations *services.InvitationService
	audit       *services.AuditService
}

func NewAdminHandler(roster *services.RosterService, invitations *services.InvitationService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{roster: roster, invitations: invitations, audit: audit}
}

// GET /api/admin/events/:eventID/invitations
func (h *AdminHandler) ListInvitations(c *gin.Context) {
	ctx := requestContext(c)
	eventID := c.Param("eventID")

	rows, err := h.roster.ListInvitations(ctx, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.roster.Summary(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"invitations": rows,
		"summary":     summary,
	})
}

type updatePhoneRequest struct {
	Phone string `json:"phone" validate:"max=30"`
}

// PATCH /api/admin/guests/:guestID/phone
func (h *AdminHandler) UpdateGuestPhone(c *gin.Context) {
	var req updatePhoneRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.roster.UpdateGuestPhone(requestContext(c), services.UpdatePhoneInput{
		GuestID: c.Param("guestID"),
		Phone:   req.Phone,
		Actor:   requestActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"guest": guest})
}

// POST /api/admin/guests/:guestID/sent
func (h *AdminHandler) MarkSent(c *gin.Context) {
	result, err := h.roster.MarkInvitationSent(requestContext(c), services.MarkSentInput{
		GuestID: c.Param("guestID"),
		Actor:   requestActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"send": result})
}

// GET /api/admin/verify/:token
//
// The door scanner posts whatever the QR decoded to. Guests sometimes print
// the full invite URL instead of the bare token, so anything up to an "/i/"
// segment is stripped before lookup.
func (h *AdminHandler) Verify(c *gin.Context) {
	token := extractToken(c.Param("token"))

	invitation, err := h.invitations.GetByToken(requestContext(c), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	actor := requestActor(c)
	_ = h.audit.Log(requestContext(c), services.AuditEntry{
		StaffUserID: optionalID(actor.StaffUserID),
		StaffEmail:  actor.Email,
		Action:      services.AuditActionTicketVerified,
		TargetID:    invitation.ID,
		IPAddress:   actor.IPAddress,
	})

	view := services.NewInvitationView(invitation)
	response.Success(c, http.StatusOK, gin.H{
		"invitation":  view,
		"access_code": services.AccessCode(invitation.InviteToken),
		"admitted":    invitation.RSVPStatus == "confirmed",
	})
}

// extractToken accepts either a bare token or a full invite URL.
func extractToken(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if i := strings.LastIndex(raw, "/i/"); i >= 0 {
		raw = raw[i+len("/i/"):]
	}
	return strings.Trim(raw, "/")
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
