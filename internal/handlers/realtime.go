package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/festivo/festivo/internal/realtime"
	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/response"
)

// RealtimeHandler upgrades invitation pages to the song-board stream.
type RealtimeHandler struct {
	hub         *realtime.Hub
	invitations *services.InvitationService
}

func NewRealtimeHandler(hub *realtime.Hub, invitations *services.InvitationService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, invitations: invitations}
}

// GET /api/realtime?token=…
//
// The invite token doubles as the stream credential: a valid token pins the
// connection to its event, an unknown one gets the regular 404 envelope.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	invitation, err := h.invitations.GetByToken(requestContext(c), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.Serve(invitation.EventID, c.Writer, c.Request)
}
