package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/handlers/dto"
	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/services"
)

type PresenceHandler struct {
	participants *services.ParticipantService
}

func NewPresenceHandler(participants *services.ParticipantService) *PresenceHandler {
	return &PresenceHandler{participants: participants}
}

// UpdatePresence фиксирует heartbeat вызывающего участника
func (h *PresenceHandler) UpdatePresence(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.participants.UpdatePresence(userID, eventID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "presence updated"})
}

// GetActiveParticipants возвращает участников, активных в окне присутствия
func (h *PresenceHandler) GetActiveParticipants(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participants, err := h.participants.GetActive(userID, eventID)
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
