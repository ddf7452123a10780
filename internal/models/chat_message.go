package models

import (
	"time"

	"github.com/google/uuid"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage — запись в треде ассистента. Для сообщений ассистента
// UserID указывает на пользователя, запустившего генерацию.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID `gorm:"not null;index"`
	UserID    uuid.UUID `gorm:"not null"`
	Role      ChatRole  `gorm:"not null;check:role IN ('user','assistant')"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
}
