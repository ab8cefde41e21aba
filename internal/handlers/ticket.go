package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/internal/ticket"
	apperrors "github.com/festivo/festivo/pkg/errors"
	"github.com/festivo/festivo/pkg/response"
)

// TicketHandler serves the QR entry pass for confirmed invitations.
type TicketHandler struct {
	invitations *services.InvitationService
	generator   *ticket.Generator
}

func NewTicketHandler(invitations *services.InvitationService, generator *ticket.Generator) *TicketHandler {
	return &TicketHandler{invitations: invitations, generator: generator}
}

// GET /api/invitations/:token/ticket
func (h *TicketHandler) Get(c *gin.Context) {
	invitation, err := h.invitations.GetByToken(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	pass, err := h.generator.Generate(invitation.InviteToken, invitation.RSVPStatus)
	if err != nil {
		if errors.Is(err, ticket.ErrNotConfirmed) {
			response.Error(c, apperrors.New("RSVP_NOT_CONFIRMED", "Confirm your attendance to get the entry pass", http.StatusConflict))
			return
		}
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Access-Code", pass.AccessCode)
	c.Data(http.StatusOK, "image/png", pass.PNG)
}
