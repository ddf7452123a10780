package database

import (
	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/models"
)

func (d *Database) CreateChatMessage(m *models.ChatMessage) error {
	return d.db.Create(m).Error
}

// GetChatMessages возвращает сообщения события в хронологическом порядке
func (d *Database) GetChatMessages(eventID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := d.db.
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
