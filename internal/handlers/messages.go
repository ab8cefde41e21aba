package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festivo/festivo/internal/models"
	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/response"
)

// MessageHandler serves the guest message wall.
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// GET /api/invitations/:token/messages
func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.messages.ListByToken(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if messages == nil {
		messages = []models.GuestMessage{}
	}
	response.Success(c, http.StatusOK, gin.H{"messages": messages})
}

type submitMessageRequest struct {
	Text string `json:"message_text" validate:"required,min=1,max=100"`
}

// POST /api/invitations/:token/messages
func (h *MessageHandler) Submit(c *gin.Context) {
	var req submitMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.messages.Submit(requestContext(c), services.SubmitMessageInput{
		Token: c.Param("token"),
		Text:  req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": message})
}
