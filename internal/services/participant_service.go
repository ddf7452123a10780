package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/models"
)

// PresenceWindow — скользящее окно, в пределах которого участник
// считается активным.
const PresenceWindow = 5 * time.Minute

type ParticipantService struct {
	store  Store
	logger *zap.Logger
}

func NewParticipantService(store Store, logger *zap.Logger) *ParticipantService {
	return &ParticipantService{store: store, logger: logger}
}

// Authorize возвращает запись участника, если его роль входит в allowed
func (s *ParticipantService) Authorize(userID, eventID uuid.UUID, allowed ...models.Role) (*models.Participant, error) {
	return authorize(s.store, userID, eventID, allowed...)
}

// Current возвращает собственную запись участника; nil без ошибки, если
// пользователь не участвует в событии
func (s *ParticipantService) Current(userID, eventID uuid.UUID) (*models.Participant, error) {
	participant, err := s.store.GetParticipant(userID, eventID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// Add добавляет участника; разрешено owner и editor. Повторное добавление
// уже существующего участника — no-op.
func (s *ParticipantService) Add(callerID, eventID, userID uuid.UUID, role models.Role) error {
	if _, err := authorize(s.store, callerID, eventID, models.RoleOwner, models.RoleEditor); err != nil {
		return err
	}

	if !role.In(models.RoleEditor, models.RoleViewer) {
		return ErrValidation
	}

	if _, err := s.store.GetUser(userID); err != nil {
		return err
	}

	if _, err := s.store.GetParticipant(userID, eventID); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	return s.store.AddParticipant(&models.Participant{
		UserID:  userID,
		EventID: eventID,
		Role:    role,
	})
}

// Remove удаляет участника; только владелец события. Запись владельца
// удалить нельзя.
func (s *ParticipantService) Remove(callerID, eventID, participantID uuid.UUID) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return err
	}
	if event.OwnerID != callerID {
		return ErrPermissionDenied
	}

	participant, err := s.store.GetParticipantByID(participantID)
	if err != nil {
		return err
	}
	if participant.EventID != eventID {
		return ErrValidation
	}
	if participant.Role == models.RoleOwner {
		return ErrValidation
	}

	return s.store.RemoveParticipant(participantID)
}

// UpdateRole меняет роль участника; только владелец события
func (s *ParticipantService) UpdateRole(callerID, eventID, participantID uuid.UUID, role models.Role) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return err
	}
	if event.OwnerID != callerID {
		return ErrPermissionDenied
	}

	if !role.In(models.RoleEditor, models.RoleViewer) {
		return ErrValidation
	}

	participant, err := s.store.GetParticipantByID(participantID)
	if err != nil {
		return err
	}
	if participant.EventID != eventID {
		return ErrValidation
	}
	if participant.Role == models.RoleOwner {
		return ErrValidation
	}

	return s.store.UpdateParticipantRole(participantID, role)
}

// List возвращает участников события с данными пользователей
func (s *ParticipantService) List(callerID, eventID uuid.UUID) ([]models.Participant, error) {
	if _, err := authorize(s.store, callerID, eventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.store.GetParticipantsByEvent(eventID)
}

// UpdatePresence отмечает heartbeat участника; не участник — тихий no-op
func (s *ParticipantService) UpdatePresence(userID, eventID uuid.UUID) error {
	err := s.store.TouchPresence(userID, eventID, time.Now())
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// GetActive возвращает участников, чей lastSeen попадает в окно присутствия
func (s *ParticipantService) GetActive(callerID, eventID uuid.UUID) ([]models.Participant, error) {
	if _, err := authorize(s.store, callerID, eventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.store.GetActiveParticipants(eventID, time.Now().Add(-PresenceWindow))
}
