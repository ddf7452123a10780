package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/models"
)

// MessageAuthor — минимальная проекция автора сообщения
type MessageAuthor struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type MessageResponse struct {
	ID        uuid.UUID       `json:"id"`
	EventID   uuid.UUID       `json:"event_id"`
	Role      models.ChatRole `json:"role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Author    MessageAuthor   `json:"author"`
}

func FormatMessage(msg models.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		EventID:   msg.EventID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		Author: MessageAuthor{
			Name:   msg.User.Name,
			Avatar: msg.User.Avatar,
		},
	}
}
