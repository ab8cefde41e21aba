package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festivo/festivo/internal/models"
	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/logger"
	"github.com/festivo/festivo/pkg/response"
)

// InvitationHandler serves the guest-facing invitation page payloads.
type InvitationHandler struct {
	invitations *services.InvitationService
	messages    *services.MessageService
}

func NewInvitationHandler(invitations *services.InvitationService, messages *services.MessageService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, messages: messages}
}

// GET /api/invitations/:token
//
// The page needs the invitation and the message wall together, so both are
// fetched in parallel. A wall failure degrades to an empty list; only the
// invitation lookup can fail the request.
func (h *InvitationHandler) Get(c *gin.Context) {
	ctx := requestContext(c)
	token := c.Param("token")

	type invitationResult struct {
		invitation *models.Invitation
		err        error
	}
	type messagesResult struct {
		messages []models.GuestMessage
		err      error
	}

	invCh := make(chan invitationResult, 1)
	msgCh := make(chan messagesResult, 1)

	go func() {
		inv, err := h.invitations.GetByToken(ctx, token)
		invCh <- invitationResult{invitation: inv, err: err}
	}()
	go func() {
		msgs, err := h.messages.ListByToken(ctx, token)
		msgCh <- messagesResult{messages: msgs, err: err}
	}()

	invRes := <-invCh
	msgRes := <-msgCh

	if invRes.err != nil {
		response.Error(c, invRes.err)
		return
	}

	messages := msgRes.messages
	if msgRes.err != nil {
		logger.WithModule("handlers").Warn("message wall fetch failed",
			zap.Error(msgRes.err),
		)
		messages = []models.GuestMessage{}
	}
	if messages == nil {
		messages = []models.GuestMessage{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"invitation": services.NewInvitationView(invRes.invitation),
		"messages":   messages,
	})
}

type rsvpRequest struct {
	Status         string  `json:"status" validate:"required,oneof=confirmed declined"`
	AttendeesCount int     `json:"attendees_count" validate:"omitempty,min=1,max=20"`
	CompanionName  *string `json:"companion_name" validate:"omitempty,max=300"`
	Notes          *string `json:"notes" validate:"omitempty,max=500"`
}

// POST /api/invitations/:token/rsvp
func (h *InvitationHandler) SubmitRSVP(c *gin.Context) {
	var req rsvpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	attendees := req.AttendeesCount
	if attendees == 0 {
		attendees = 1
	}

	invitation, err := h.invitations.SubmitRSVP(requestContext(c), services.SubmitRSVPInput{
		Token:          c.Param("token"),
		Status:         req.Status,
		AttendeesCount: attendees,
		CompanionName:  req.CompanionName,
		Notes:          req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"invitation": services.NewInvitationView(invitation),
	})
}
