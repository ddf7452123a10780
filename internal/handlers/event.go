package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/handlers/dto"
	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// CreateEvent создает событие; создатель становится владельцем
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Title                string    `json:"title" binding:"required"`
		Date                 time.Time `json:"date" binding:"required"`
		Duration             int       `json:"duration" binding:"required,min=1"`
		Status               string    `json:"status" binding:"required,oneof=upcoming draft completed"`
		ExpectedParticipants int       `json:"expected_participants" binding:"min=0"`
		Tone                 string    `json:"tone" binding:"required,oneof=formal casual"`
		Goals                string    `json:"goals"`
		IsPublic             bool      `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.CreateEvent(userID, services.CreateEventInput{
		Title:                req.Title,
		Date:                 req.Date,
		Duration:             req.Duration,
		Status:               models.EventStatus(req.Status),
		ExpectedParticipants: req.ExpectedParticipants,
		Tone:                 models.EventTone(req.Tone),
		Goals:                req.Goals,
		IsPublic:             req.IsPublic,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": event.ID})
}

// GetEvents возвращает события, где пользователь участвует
func (h *EventHandler) GetEvents(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	details, err := h.events.GetEvents(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	events := make([]dto.EventResponse, 0, len(details))
	for _, d := range details {
		events = append(events, dto.FormatEvent(d))
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetEvent возвращает событие с повесткой и счетчиком участников
func (h *EventHandler) GetEvent(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	details, err := h.events.GetEvent(userID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FormatEvent(*details))
}

// UpdateEvent обновляет только переданные поля; только владелец
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req struct {
		Title    *string    `json:"title"`
		Date     *time.Time `json:"date"`
		Duration *int       `json:"duration" binding:"omitempty,min=1"`
		Status   *string    `json:"status" binding:"omitempty,oneof=upcoming draft completed"`
		Tone     *string    `json:"tone" binding:"omitempty,oneof=formal casual"`
		Goals    *string    `json:"goals"`
		IsPublic *bool      `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateEventInput{
		Title:    req.Title,
		Date:     req.Date,
		Duration: req.Duration,
		Goals:    req.Goals,
		IsPublic: req.IsPublic,
	}
	if req.Status != nil {
		status := models.EventStatus(*req.Status)
		input.Status = &status
	}
	if req.Tone != nil {
		tone := models.EventTone(*req.Tone)
		input.Tone = &tone
	}

	event, err := h.events.UpdateEvent(userID, eventID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": event.ID})
}

// DeleteEvent каскадно удаляет событие; только владелец
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.events.DeleteEvent(userID, eventID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}
