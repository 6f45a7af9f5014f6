package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"tailortalk/models"
	"tailortalk/services/booking"
	"tailortalk/services/session"
	"tailortalk/services/speech"
	"tailortalk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes the conversation engine over HTTP.
type ChatHandler struct {
	Engine      booking.ConversationService
	Transcriber speech.Transcriber
}

func NewChatHandler(engine booking.ConversationService, transcriber speech.Transcriber) *ChatHandler {
	return &ChatHandler{Engine: engine, Transcriber: transcriber}
}

// SendMessageHandler processes one typed chat message.
func (h *ChatHandler) SendMessageHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", "message must not be empty")
		return
	}

	resp, err := h.Engine.ProcessMessage(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		logger.Error("Failed to process chat message", zap.String("sessionID", req.SessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Error processing message", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VoiceMessageHandler transcribes a WAV upload and processes the transcript
// like a typed message.
func (h *ChatHandler) VoiceMessageHandler(c *gin.Context) {
	logger := getLogger(c)
	language := c.DefaultPostForm("language", speech.DefaultLanguage)
	sessionID := c.PostForm("session_id")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != speech.AllowedExtension {
		utils.JSONError(c, http.StatusBadRequest, "invalid file type",
			fmt.Sprintf("expected %s, got %s", speech.AllowedExtension, ext))
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, speech.MaxFileSize+1))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read audio file", err.Error())
		return
	}
	if len(audio) > speech.MaxFileSize {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio file too large",
			fmt.Sprintf("limit is %d bytes", speech.MaxFileSize))
		return
	}

	transcript, err := h.Transcriber.Transcribe(c.Request.Context(), audio, language)
	switch {
	case errors.Is(err, speech.ErrInvalidAudio):
		utils.JSONError(c, http.StatusBadRequest, "invalid audio", err.Error())
		return
	case errors.Is(err, speech.ErrUnavailable):
		utils.JSONError(c, http.StatusServiceUnavailable, "speech recognition unavailable", err.Error())
		return
	case err != nil:
		logger.Error("Speech recognition failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "speech recognition failed", err.Error())
		return
	}
	if transcript == "" {
		utils.JSONError(c, http.StatusUnprocessableEntity, "no speech recognised", "the recording contained no recognisable speech")
		return
	}

	resp, err := h.Engine.ProcessMessage(c.Request.Context(), transcript, sessionID)
	if err != nil {
		logger.Error("Failed to process voice message", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Error processing message", err.Error())
		return
	}
	resp.Transcript = transcript
	c.JSON(http.StatusOK, resp)
}

// HistoryHandler returns the conversation history of a session.
func (h *ChatHandler) HistoryHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	history, err := h.Engine.History(c.Request.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Session not found", sessionID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Error retrieving history", err.Error())
		return
	}
	c.JSON(http.StatusOK, history)
}

// DeleteSessionHandler clears a session.
func (h *ChatHandler) DeleteSessionHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	err := h.Engine.DeleteSession(c.Request.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Session not found", sessionID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Error clearing session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Session %s cleared successfully", sessionID)})
}

// ListSessionsHandler summarises every live session.
func (h *ChatHandler) ListSessionsHandler(c *gin.Context) {
	sessions, err := h.Engine.ListSessions(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Error listing sessions", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active_sessions": sessions,
		"total_sessions":  len(sessions),
	})
}
