package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/models"
)

type EventService struct {
	store  Store
	logger *zap.Logger
}

func NewEventService(store Store, logger *zap.Logger) *EventService {
	return &EventService{store: store, logger: logger}
}

type CreateEventInput struct {
	Title                string
	Date                 time.Time
	Duration             int
	Status               models.EventStatus
	ExpectedParticipants int
	Tone                 models.EventTone
	Goals                string
	IsPublic             bool
}

type UpdateEventInput struct {
	Title    *string
	Date     *time.Time
	Duration *int
	Status   *models.EventStatus
	Tone     *models.EventTone
	Goals    *string
	IsPublic *bool
}

// AgendaItemDetails — пункт повестки вместе с именами проголосовавших.
type AgendaItemDetails struct {
	Item    models.AgendaItem
	VotedBy []string
}

// EventDetails — событие с повесткой и количеством участников.
type EventDetails struct {
	Event            models.Event
	Agenda           []AgendaItemDetails
	ParticipantCount int
}

// CreateEvent создает событие и запись участника-владельца одной транзакцией
func (s *EventService) CreateEvent(userID uuid.UUID, input CreateEventInput) (*models.Event, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	event := &models.Event{
		Title:                input.Title,
		Date:                 input.Date,
		Duration:             input.Duration,
		Status:               input.Status,
		ExpectedParticipants: input.ExpectedParticipants,
		Tone:                 input.Tone,
		Goals:                input.Goals,
		CreatedAt:            time.Now(),
		OwnerID:              userID,
		IsPublic:             input.IsPublic,
	}

	if err := s.store.CreateEventWithOwner(event); err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("owner_id", userID.String()))

	return event, nil
}

// GetEvents возвращает события, в которых пользователь участвует
func (s *EventService) GetEvents(userID uuid.UUID) ([]EventDetails, error) {
	events, err := s.store.GetEventsForUser(userID)
	if err != nil {
		return nil, err
	}

	details := make([]EventDetails, 0, len(events))
	for _, event := range events {
		d, err := s.projectEvent(event)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// GetEvent возвращает событие с повесткой; вызывающий должен быть участником
func (s *EventService) GetEvent(userID, eventID uuid.UUID) (*EventDetails, error) {
	if _, err := authorize(s.store, userID, eventID, models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	return s.projectEvent(*event)
}

func (s *EventService) projectEvent(event models.Event) (*EventDetails, error) {
	items, err := s.store.GetAgendaItems(event.ID)
	if err != nil {
		return nil, err
	}

	agenda := make([]AgendaItemDetails, 0, len(items))
	for _, item := range items {
		voters, err := s.store.GetVotersByItem(item.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(voters))
		for _, voter := range voters {
			names = append(names, voter.Name)
		}
		agenda = append(agenda, AgendaItemDetails{Item: item, VotedBy: names})
	}

	participants, err := s.store.GetParticipantsByEvent(event.ID)
	if err != nil {
		return nil, err
	}

	return &EventDetails{
		Event:            event,
		Agenda:           agenda,
		ParticipantCount: len(participants),
	}, nil
}

// UpdateEvent обновляет только переданные поля; разрешено только владельцу
func (s *EventService) UpdateEvent(userID, eventID uuid.UUID, input UpdateEventInput) (*models.Event, error) {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if event.OwnerID != userID {
		return nil, ErrPermissionDenied
	}

	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.Duration != nil {
		event.Duration = *input.Duration
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if input.Tone != nil {
		event.Tone = *input.Tone
	}
	if input.Goals != nil {
		event.Goals = *input.Goals
	}
	if input.IsPublic != nil {
		event.IsPublic = *input.IsPublic
	}

	if err := s.store.UpdateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent каскадно удаляет событие со всеми детьми; только владелец
func (s *EventService) DeleteEvent(userID, eventID uuid.UUID) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return err
	}

	if event.OwnerID != userID {
		return ErrPermissionDenied
	}

	if err := s.store.DeleteEvent(eventID); err != nil {
		return err
	}

	s.logger.Info("event deleted", zap.String("event_id", eventID.String()))
	return nil
}
