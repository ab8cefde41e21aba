package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/response"
)

// SongHandler serves the shared song-request board.
type SongHandler struct {
	songs *services.SongService
}

func NewSongHandler(songs *services.SongService) *SongHandler {
	return &SongHandler{songs: songs}
}

// GET /api/invitations/:token/songs
func (h *SongHandler) List(c *gin.Context) {
	board, err := h.songs.List(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if board == nil {
		board = []services.SongView{}
	}
	response.Success(c, http.StatusOK, gin.H{"songs": board})
}

type submitSongRequest struct {
	Text string `json:"query_text" validate:"required,min=3,max=120"`
}

// POST /api/invitations/:token/songs
func (h *SongHandler) Submit(c *gin.Context) {
	var req submitSongRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.songs.Submit(requestContext(c), services.SubmitSongInput{
		Token: c.Param("token"),
		Text:  req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"song": request})
}

// POST /api/invitations/:token/songs/:id/vote
func (h *SongHandler) Vote(c *gin.Context) {
	if err := h.songs.Vote(requestContext(c), c.Param("token"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"voted": true})
}
