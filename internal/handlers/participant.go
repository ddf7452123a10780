package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/handlers/dto"
	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

type ParticipantHandler struct {
	participants *services.ParticipantService
}

func NewParticipantHandler(participants *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participants: participants}
}

// AddParticipant добавляет участника; owner и editor
func (h *ParticipantHandler) AddParticipant(c *gin.Context) {
	callerID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
		Role   string    `json:"role" binding:"required,oneof=editor viewer"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.participants.Add(callerID, eventID, req.UserID, models.Role(req.Role)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participant added"})
}

// RemoveParticipant удаляет участника; только владелец события
func (h *ParticipantHandler) RemoveParticipant(c *gin.Context) {
	callerID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participantID, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	if err := h.participants.Remove(callerID, eventID, participantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}

// UpdateParticipantRole меняет роль участника; только владелец события
func (h *ParticipantHandler) UpdateParticipantRole(c *gin.Context) {
	callerID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participantID, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required,oneof=editor viewer"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.participants.UpdateRole(callerID, eventID, participantID, models.Role(req.Role)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// GetParticipants возвращает участников события с данными пользователей
func (h *ParticipantHandler) GetParticipants(c *gin.Context) {
	callerID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participants, err := h.participants.List(callerID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		result = append(result, dto.FormatParticipant(p))
	}

	c.JSON(http.StatusOK, gin.H{"participants": result})
}

// GetMyParticipant возвращает собственную запись участника; null, если
// вызывающий не участвует в событии
func (h *ParticipantHandler) GetMyParticipant(c *gin.Context) {
	callerID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participant, err := h.participants.Current(callerID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	if participant == nil {
		c.JSON(http.StatusOK, gin.H{"participant": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participant": gin.H{
		"id":       participant.ID,
		"event_id": participant.EventID,
		"role":     participant.Role,
	}})
}
