package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/assistant"
	"github.com/thereayou/planora/internal/handlers/dto"
	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/models"
)

type ChatHandler struct {
	orchestrator *assistant.Orchestrator
}

func NewChatHandler(orchestrator *assistant.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// SendMessage добавляет сообщение в тред ассистента. Роль по умолчанию —
// user; пользовательское сообщение запускает фоновую генерацию ответа.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
		Role    string `json:"role" binding:"omitempty,oneof=user assistant system"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.ChatRoleUser
	if req.Role != "" {
		role = models.ChatRole(req.Role)
	}

	msg, err := h.orchestrator.SendMessage(c.Request.Context(), eventID, userID, req.Content, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": dto.FormatMessage(*msg)})
}

// GetMessages возвращает тред ассистента в хронологическом порядке
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	messages, err := h.orchestrator.GetMessages(userID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, dto.FormatMessage(msg))
	}

	c.JSON(http.StatusOK, gin.H{"messages": result})
}
