package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

func (d *Database) AddParticipant(p *models.Participant) error {
	return d.db.Create(p).Error
}

func (d *Database) GetParticipant(userID, eventID uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	err := d.db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&participant).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &participant, nil
}

func (d *Database) GetParticipantByID(id uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	if err := d.db.First(&participant, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &participant, nil
}

func (d *Database) GetParticipantsByEvent(eventID uuid.UUID) ([]models.Participant, error) {
	var participants []models.Participant
	err := d.db.
		Where("event_id = ?", eventID).
		Preload("User").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (d *Database) UpdateParticipantRole(id uuid.UUID, role models.Role) error {
	res := d.db.Model(&models.Participant{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (d *Database) RemoveParticipant(id uuid.UUID) error {
	return d.db.Delete(&models.Participant{}, "id = ?", id).Error
}

// TouchPresence обновляет heartbeat участника
func (d *Database) TouchPresence(userID, eventID uuid.UUID, seenAt time.Time) error {
	res := d.db.Model(&models.Participant{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Update("last_seen", seenAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

// GetActiveParticipants возвращает участников с lastSeen внутри окна
// присутствия; записи с исчезнувшим пользователем отбрасываются
func (d *Database) GetActiveParticipants(eventID uuid.UUID, since time.Time) ([]models.Participant, error) {
	var participants []models.Participant
	err := d.db.
		Where("event_id = ? AND last_seen > ?", eventID, since).
		Preload("User").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}

	active := participants[:0]
	for _, p := range participants {
		if p.User.ID != uuid.Nil {
			active = append(active, p)
		}
	}
	return active, nil
}
