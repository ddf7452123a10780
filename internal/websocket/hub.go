package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/models"
)

// MessageType определяет типы кадров
type MessageType string

const (
	// Системные типы
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	// Подписка на событие
	TypeEventJoin  MessageType = "event_join"
	TypeEventLeave MessageType = "event_leave"

	// Heartbeat присутствия
	TypePresence MessageType = "presence"

	// Live-обновления
	TypeChatMessage   MessageType = "chat_message"
	TypeAgendaUpdated MessageType = "agenda_updated"
)

type Message struct {
	Type      MessageType     `json:"type"`
	EventID   *uuid.UUID      `json:"event_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// Клиенты по UserID (один пользователь может держать несколько соединений)
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Подписчики по событиям
	events map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		events:      make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run запускает цикл hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		client.Conn.Close()
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	h.logger.Debug("ws client registered",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID.String()))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for eventID := range client.Events {
		h.removeFromEventUnsafe(client, eventID)
	}

	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	h.logger.Debug("ws client unregistered",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID.String()))
}

// JoinEvent подписывает клиента на кадры события
func (h *Hub) JoinEvent(client *Client, eventID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.events[eventID]; !ok {
		h.events[eventID] = make(map[uuid.UUID]*Client)
	}
	h.events[eventID][client.ID] = client

	client.mu.Lock()
	client.Events[eventID] = true
	client.mu.Unlock()
}

// LeaveEvent снимает подписку клиента
func (h *Hub) LeaveEvent(client *Client, eventID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromEventUnsafe(client, eventID)
}

func (h *Hub) removeFromEventUnsafe(client *Client, eventID uuid.UUID) {
	if subs, ok := h.events[eventID]; ok {
		delete(subs, client.ID)
		if len(subs) == 0 {
			delete(h.events, eventID)
		}
	}
	client.mu.Lock()
	delete(client.Events, eventID)
	client.mu.Unlock()
}

// SendToEvent рассылает кадр всем подписчикам события
func (h *Hub) SendToEvent(eventID uuid.UUID, msgType MessageType, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal ws payload", zap.Error(err))
		return
	}

	msg := Message{
		Type:      msgType,
		EventID:   &eventID,
		Data:      payload,
		Timestamp: time.Now(),
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal ws frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.events[eventID] {
		select {
		case client.Send <- frame:
		default:
			h.logger.Warn("ws client send queue full",
				zap.String("client_id", client.ID.String()))
		}
	}
}

// NotifyChatMessage реализует assistant.Notifier
func (h *Hub) NotifyChatMessage(eventID uuid.UUID, msg models.ChatMessage) {
	h.SendToEvent(eventID, TypeChatMessage, map[string]interface{}{
		"id":         msg.ID,
		"event_id":   msg.EventID,
		"user_id":    msg.UserID,
		"role":       msg.Role,
		"content":    msg.Content,
		"created_at": msg.CreatedAt,
	})
}

// NotifyAgendaUpdated реализует assistant.Notifier
func (h *Hub) NotifyAgendaUpdated(eventID uuid.UUID) {
	h.SendToEvent(eventID, TypeAgendaUpdated, map[string]interface{}{
		"event_id": eventID,
	})
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      TypePing,
		Timestamp: time.Now(),
	}

	if frame, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- frame:
			default:
			}
		}
	}
}

// GetEventSubscribers возвращает пользователей, подписанных на событие
func (h *Hub) GetEventSubscribers(eventID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if subs, ok := h.events[eventID]; ok {
		for _, client := range subs {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
