package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thereayou/planora/internal/models"
)

// CreateEventWithOwner вставляет событие и участника-владельца одной
// транзакцией: частичный сбой не оставляет ни одной строки
func (d *Database) CreateEventWithOwner(event *models.Event) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		owner := &models.Participant{
			UserID:  event.OwnerID,
			EventID: event.ID,
			Role:    models.RoleOwner,
		}
		return tx.Create(owner).Error
	})
}

func (d *Database) GetEvent(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := d.db.First(&event, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &event, nil
}

// GetEventsForUser возвращает события, где пользователь числится участником
func (d *Database) GetEventsForUser(userID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := d.db.
		Joins("JOIN participants ON participants.event_id = events.id").
		Where("participants.user_id = ?", userID).
		Order("events.created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *Database) UpdateEvent(event *models.Event) error {
	return d.db.Save(event).Error
}

// DeleteEvent удаляет детей раньше родителей: голоса, пункты повестки,
// сообщения чата, участники, затем само событие
func (d *Database) DeleteEvent(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", id).Error; err != nil {
			return wrapNotFound(err)
		}

		if err := tx.Delete(&models.Vote{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.AgendaItem{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ChatMessage{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Participant{}, "event_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&event).Error
	})
}
