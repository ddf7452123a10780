package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/handlers/dto"
	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
	ws "github.com/thereayou/planora/internal/websocket"
)

type AgendaHandler struct {
	agenda *services.AgendaService
	hub    *ws.Hub
}

func NewAgendaHandler(agenda *services.AgendaService, hub *ws.Hub) *AgendaHandler {
	return &AgendaHandler{agenda: agenda, hub: hub}
}

func (h *AgendaHandler) notifyAgendaUpdated(eventID uuid.UUID) {
	if h.hub != nil {
		h.hub.NotifyAgendaUpdated(eventID)
	}
}

// CreateAgendaItem добавляет пункт в конец повестки; любой участник
func (h *AgendaHandler) CreateAgendaItem(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Duration    int     `json:"duration" binding:"required,min=1"`
		StartTime   string  `json:"start_time" binding:"required"`
		EndTime     *string `json:"end_time"`
		Description string  `json:"description"`
		Type        string  `json:"type" binding:"required,oneof=presentation discussion break activity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.agenda.CreateItem(userID, eventID, services.CreateAgendaItemInput{
		Title:       req.Title,
		Duration:    req.Duration,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		Type:        models.AgendaItemType(req.Type),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyAgendaUpdated(eventID)
	c.JSON(http.StatusCreated, dto.FormatAgendaItem(*item, nil))
}

// UpdateAgendaItem обновляет только переданные поля
func (h *AgendaHandler) UpdateAgendaItem(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agenda item id"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Duration    *int    `json:"duration" binding:"omitempty,min=1"`
		StartTime   *string `json:"start_time"`
		EndTime     *string `json:"end_time"`
		Description *string `json:"description"`
		Type        *string `json:"type" binding:"omitempty,oneof=presentation discussion break activity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateAgendaItemInput{
		Title:       req.Title,
		Duration:    req.Duration,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
	if req.Type != nil {
		itemType := models.AgendaItemType(*req.Type)
		input.Type = &itemType
	}

	item, err := h.agenda.UpdateItem(userID, itemID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyAgendaUpdated(item.EventID)
	c.JSON(http.StatusOK, dto.FormatAgendaItem(*item, nil))
}

// DeleteAgendaItem удаляет пункт вместе с голосами
func (h *AgendaHandler) DeleteAgendaItem(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agenda item id"})
		return
	}

	item, err := h.agenda.DeleteItem(userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyAgendaUpdated(item.EventID)
	c.JSON(http.StatusOK, gin.H{"message": "agenda item deleted"})
}

// ReorderAgendaItems переписывает порядок повестки события
func (h *AgendaHandler) ReorderAgendaItems(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req struct {
		OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.agenda.Reorder(userID, eventID, req.OrderedIDs); err != nil {
		respondError(c, err)
		return
	}

	h.notifyAgendaUpdated(eventID)
	c.JSON(http.StatusOK, gin.H{"message": "agenda reordered"})
}

// Vote переключает голос вызывающего за пункт повестки
func (h *AgendaHandler) Vote(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agenda item id"})
		return
	}

	var req struct {
		EventID uuid.UUID `json:"event_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voted, votes, err := h.agenda.Vote(userID, itemID, req.EventID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyAgendaUpdated(req.EventID)
	c.JSON(http.StatusOK, gin.H{"voted": voted, "votes": votes})
}
