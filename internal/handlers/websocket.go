package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/services"
	ws "github.com/thereayou/planora/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin проверяется на уровне reverse proxy
		return true
	},
}

type WebSocketHandler struct {
	hub          *ws.Hub
	participants *services.ParticipantService
	logger       *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, participants *services.ParticipantService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, participants: participants, logger: logger}
}

// HandleWebSocket апгрейдит соединение и запускает pump'ы клиента
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(&MessageHandler{
		hub:          h.hub,
		participants: h.participants,
		logger:       h.logger,
	})
}

// MessageHandler обрабатывает прикладные ws-кадры: подписку на события
// и heartbeat присутствия
type MessageHandler struct {
	hub          *ws.Hub
	participants *services.ParticipantService
	logger       *zap.Logger
}

func (m *MessageHandler) HandleMessage(client *ws.Client, msg *ws.Message) error {
	switch msg.Type {
	case ws.TypeEventJoin:
		return m.handleJoin(client, msg)

	case ws.TypeEventLeave:
		if msg.EventID == nil {
			return ws.ErrEventNotProvided
		}
		m.hub.LeaveEvent(client, *msg.EventID)
		return nil

	case ws.TypePresence:
		return m.handlePresence(client, msg)

	default:
		return ws.ErrInvalidMessage
	}
}

// handleJoin подписывает клиента на событие после проверки участия
func (m *MessageHandler) handleJoin(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrEventNotProvided
	}

	participant, err := m.participants.Current(client.UserID, *msg.EventID)
	if err != nil {
		return err
	}
	if participant == nil {
		return ws.ErrNotParticipant
	}

	m.hub.JoinEvent(client, *msg.EventID)

	m.logger.Debug("ws client joined event",
		zap.String("user_id", client.UserID.String()),
		zap.String("event_id", msg.EventID.String()))
	return nil
}

// handlePresence фиксирует heartbeat и рассылает его подписчикам события
func (m *MessageHandler) handlePresence(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrEventNotProvided
	}
	if !client.IsSubscribed(*msg.EventID) {
		return ws.ErrNotParticipant
	}

	if err := m.participants.UpdatePresence(client.UserID, *msg.EventID); err != nil {
		return err
	}

	m.hub.SendToEvent(*msg.EventID, ws.TypePresence, map[string]interface{}{
		"user_id": client.UserID,
	})
	return nil
}
