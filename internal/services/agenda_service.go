package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/models"
)

type AgendaService struct {
	store  Store
	logger *zap.Logger
}

func NewAgendaService(store Store, logger *zap.Logger) *AgendaService {
	return &AgendaService{store: store, logger: logger}
}

type CreateAgendaItemInput struct {
	Title       string
	Duration    int
	StartTime   string
	EndTime     *string
	Description string
	Type        models.AgendaItemType
}

type UpdateAgendaItemInput struct {
	Title       *string
	Duration    *int
	StartTime   *string
	EndTime     *string
	Description *string
	Type        *models.AgendaItemType
}

// CreateItem добавляет пункт повестки в конец; любой участник события.
// Порядковый номер назначает хранилище внутри транзакции.
func (s *AgendaService) CreateItem(userID, eventID uuid.UUID, input CreateAgendaItemInput) (*models.AgendaItem, error) {
	if _, err := authorize(s.store, userID, eventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	item := &models.AgendaItem{
		EventID:     eventID,
		Title:       input.Title,
		Duration:    input.Duration,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Description: input.Description,
		Type:        input.Type,
	}

	if err := s.store.CreateAgendaItem(item); err != nil {
		return nil, err
	}

	s.logger.Info("agenda item created",
		zap.String("event_id", eventID.String()),
		zap.String("item_id", item.ID.String()),
		zap.Int("order", item.Order))

	return item, nil
}

// UpdateItem обновляет только переданные поля
func (s *AgendaService) UpdateItem(userID, itemID uuid.UUID, input UpdateAgendaItemInput) (*models.AgendaItem, error) {
	item, err := s.store.GetAgendaItem(itemID)
	if err != nil {
		return nil, err
	}

	if _, err := authorize(s.store, userID, item.EventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Duration != nil {
		item.Duration = *input.Duration
	}
	if input.StartTime != nil {
		item.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		item.EndTime = input.EndTime
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Type != nil {
		item.Type = *input.Type
	}

	if err := s.store.UpdateAgendaItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem удаляет пункт вместе с его голосами; возвращает удаленный пункт
func (s *AgendaService) DeleteItem(userID, itemID uuid.UUID) (*models.AgendaItem, error) {
	item, err := s.store.GetAgendaItem(itemID)
	if err != nil {
		return nil, err
	}

	if _, err := authorize(s.store, userID, item.EventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	if err := s.store.DeleteAgendaItem(itemID); err != nil {
		return nil, err
	}
	return item, nil
}

// Reorder переписывает порядок пунктов по переданной последовательности id.
// Набор id обязан совпадать с текущей повесткой события.
func (s *AgendaService) Reorder(userID, eventID uuid.UUID, orderedIDs []uuid.UUID) error {
	if _, err := authorize(s.store, userID, eventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return err
	}

	return s.store.ReorderAgendaItems(eventID, orderedIDs)
}

// Vote переключает голос пользователя за пункт повестки. Голосовать может
// участник с любой ролью, включая viewer.
func (s *AgendaService) Vote(userID, itemID, eventID uuid.UUID) (voted bool, votes int, err error) {
	if _, err := authorize(s.store, userID, eventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return false, 0, err
	}

	item, err := s.store.GetAgendaItem(itemID)
	if err != nil {
		return false, 0, err
	}
	if item.EventID != eventID {
		return false, 0, ErrValidation
	}

	return s.store.ToggleVote(userID, itemID, eventID)
}
