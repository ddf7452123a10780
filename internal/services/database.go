package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/planora/internal/models"
)

// Store — контракт хранилища. Реализации: gorm/postgres и in-memory.
// Все методы, затрагивающие инварианты (порядок пунктов, счетчик голосов,
// каскадное удаление), выполняются как одна атомарная транзакция.
type Store interface {
	// Пользователи
	UpsertUserByExternalID(user *models.User) error
	GetUser(id uuid.UUID) (*models.User, error)
	GetUserByExternalID(externalID string) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)

	// События
	CreateEventWithOwner(event *models.Event) error
	GetEvent(id uuid.UUID) (*models.Event, error)
	GetEventsForUser(userID uuid.UUID) ([]models.Event, error)
	UpdateEvent(event *models.Event) error
	DeleteEvent(id uuid.UUID) error

	// Повестка
	CreateAgendaItem(item *models.AgendaItem) error
	GetAgendaItem(id uuid.UUID) (*models.AgendaItem, error)
	GetAgendaItems(eventID uuid.UUID) ([]models.AgendaItem, error)
	UpdateAgendaItem(item *models.AgendaItem) error
	DeleteAgendaItem(id uuid.UUID) error
	ReorderAgendaItems(eventID uuid.UUID, orderedIDs []uuid.UUID) error

	// Голоса
	ToggleVote(userID, itemID, eventID uuid.UUID) (voted bool, votes int, err error)
	GetVotersByItem(itemID uuid.UUID) ([]models.User, error)
	CountVotesByItem(itemID uuid.UUID) (int, error)

	// Участники
	AddParticipant(p *models.Participant) error
	GetParticipant(userID, eventID uuid.UUID) (*models.Participant, error)
	GetParticipantByID(id uuid.UUID) (*models.Participant, error)
	GetParticipantsByEvent(eventID uuid.UUID) ([]models.Participant, error)
	UpdateParticipantRole(id uuid.UUID, role models.Role) error
	RemoveParticipant(id uuid.UUID) error
	TouchPresence(userID, eventID uuid.UUID, seenAt time.Time) error
	GetActiveParticipants(eventID uuid.UUID, since time.Time) ([]models.Participant, error)

	// Чат ассистента
	CreateChatMessage(m *models.ChatMessage) error
	GetChatMessages(eventID uuid.UUID) ([]models.ChatMessage, error)
}

// authorize возвращает запись участника, если его роль входит в allowed.
// Все role-gated операции проходят через эту единственную проверку.
func authorize(store Store, userID, eventID uuid.UUID, allowed ...models.Role) (*models.Participant, error) {
	participant, err := store.GetParticipant(userID, eventID)
	if err != nil {
		return nil, err
	}
	if !participant.Role.In(allowed...) {
		return nil, ErrPermissionDenied
	}
	return participant, nil
}
