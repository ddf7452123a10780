package database

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

// MemoryDatabase — потокобезопасная реализация Store в памяти.
// Используется в dev-режиме без Postgres и в тестах. Инварианты
// (порядок пунктов, счетчик голосов, каскады) здесь те же, что и в
// postgres-реализации; атомарность обеспечивает общий мьютекс.
type MemoryDatabase struct {
	mu sync.Mutex

	users        map[uuid.UUID]models.User
	events       map[uuid.UUID]models.Event
	participants map[uuid.UUID]models.Participant
	agendaItems  map[uuid.UUID]models.AgendaItem
	votes        map[uuid.UUID]models.Vote
	chatMessages []models.ChatMessage
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		users:        make(map[uuid.UUID]models.User),
		events:       make(map[uuid.UUID]models.Event),
		participants: make(map[uuid.UUID]models.Participant),
		agendaItems:  make(map[uuid.UUID]models.AgendaItem),
		votes:        make(map[uuid.UUID]models.Vote),
	}
}

func (m *MemoryDatabase) UpsertUserByExternalID(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.users {
		if existing.ExternalID == user.ExternalID {
			existing.Name = user.Name
			existing.Email = user.Email
			existing.Avatar = user.Avatar
			m.users[id] = existing
			*user = existing
			return nil
		}
	}

	user.ID = uuid.New()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryDatabase) GetUser(id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &user, nil
}

func (m *MemoryDatabase) GetUserByExternalID(externalID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ExternalID == externalID {
			u := user
			return &u, nil
		}
	}
	return nil, services.ErrNotFound
}

func (m *MemoryDatabase) FindUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, services.ErrNotFound
}

func (m *MemoryDatabase) CreateEventWithOwner(event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event.ID = uuid.New()
	m.events[event.ID] = *event

	owner := models.Participant{
		ID:      uuid.New(),
		UserID:  event.OwnerID,
		EventID: event.ID,
		Role:    models.RoleOwner,
	}
	m.participants[owner.ID] = owner
	return nil
}

func (m *MemoryDatabase) GetEvent(id uuid.UUID) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &event, nil
}

func (m *MemoryDatabase) GetEventsForUser(userID uuid.UUID) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []models.Event
	for _, p := range m.participants {
		if p.UserID != userID {
			continue
		}
		if event, ok := m.events[p.EventID]; ok {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (m *MemoryDatabase) UpdateEvent(event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[event.ID]; !ok {
		return services.ErrNotFound
	}
	m.events[event.ID] = *event
	return nil
}

func (m *MemoryDatabase) DeleteEvent(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return services.ErrNotFound
	}

	// Дети раньше родителей
	for voteID, vote := range m.votes {
		if vote.EventID == id {
			delete(m.votes, voteID)
		}
	}
	for itemID, item := range m.agendaItems {
		if item.EventID == id {
			delete(m.agendaItems, itemID)
		}
	}
	kept := m.chatMessages[:0]
	for _, msg := range m.chatMessages {
		if msg.EventID != id {
			kept = append(kept, msg)
		}
	}
	m.chatMessages = kept
	for pID, p := range m.participants {
		if p.EventID == id {
			delete(m.participants, pID)
		}
	}
	delete(m.events, id)
	return nil
}

func (m *MemoryDatabase) CreateAgendaItem(item *models.AgendaItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[item.EventID]; !ok {
		return services.ErrNotFound
	}

	count := 0
	for _, existing := range m.agendaItems {
		if existing.EventID == item.EventID {
			count++
		}
	}

	item.ID = uuid.New()
	item.Order = count
	item.Votes = 0
	m.agendaItems[item.ID] = *item
	return nil
}

func (m *MemoryDatabase) GetAgendaItem(id uuid.UUID) (*models.AgendaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.agendaItems[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &item, nil
}

func (m *MemoryDatabase) GetAgendaItems(eventID uuid.UUID) ([]models.AgendaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.agendaItemsLocked(eventID)
	return items, nil
}

func (m *MemoryDatabase) agendaItemsLocked(eventID uuid.UUID) []models.AgendaItem {
	var items []models.AgendaItem
	for _, item := range m.agendaItems {
		if item.EventID == eventID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items
}

func (m *MemoryDatabase) UpdateAgendaItem(item *models.AgendaItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agendaItems[item.ID]; !ok {
		return services.ErrNotFound
	}
	m.agendaItems[item.ID] = *item
	return nil
}

func (m *MemoryDatabase) DeleteAgendaItem(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.agendaItems[id]
	if !ok {
		return services.ErrNotFound
	}

	for voteID, vote := range m.votes {
		if vote.AgendaItemID == id {
			delete(m.votes, voteID)
		}
	}
	delete(m.agendaItems, id)

	// Уплотняем порядковые номера оставшихся
	for itemID, other := range m.agendaItems {
		if other.EventID == item.EventID && other.Order > item.Order {
			other.Order--
			m.agendaItems[itemID] = other
		}
	}
	return nil
}

func (m *MemoryDatabase) ReorderAgendaItems(eventID uuid.UUID, orderedIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.agendaItemsLocked(eventID)
	if len(current) != len(orderedIDs) {
		return services.ErrValidation
	}
	existing := make(map[uuid.UUID]bool, len(current))
	for _, item := range current {
		existing[item.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !existing[id] || seen[id] {
			return services.ErrValidation
		}
		seen[id] = true
	}

	for i, id := range orderedIDs {
		item := m.agendaItems[id]
		item.Order = i
		m.agendaItems[id] = item
	}
	return nil
}

func (m *MemoryDatabase) ToggleVote(userID, itemID, eventID uuid.UUID) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.agendaItems[itemID]
	if !ok {
		return false, 0, services.ErrNotFound
	}

	for voteID, vote := range m.votes {
		if vote.UserID == userID && vote.AgendaItemID == itemID {
			delete(m.votes, voteID)
			item.Votes--
			m.agendaItems[itemID] = item
			return false, item.Votes, nil
		}
	}

	vote := models.Vote{ID: uuid.New(), UserID: userID, AgendaItemID: itemID, EventID: eventID}
	m.votes[vote.ID] = vote
	item.Votes++
	m.agendaItems[itemID] = item
	return true, item.Votes, nil
}

func (m *MemoryDatabase) GetVotersByItem(itemID uuid.UUID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []models.User
	for _, vote := range m.votes {
		if vote.AgendaItemID != itemID {
			continue
		}
		if user, ok := m.users[vote.UserID]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *MemoryDatabase) CountVotesByItem(itemID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, vote := range m.votes {
		if vote.AgendaItemID == itemID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryDatabase) AddParticipant(p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.participants {
		if existing.UserID == p.UserID && existing.EventID == p.EventID {
			return services.ErrConflict
		}
	}

	p.ID = uuid.New()
	m.participants[p.ID] = *p
	return nil
}

func (m *MemoryDatabase) GetParticipant(userID, eventID uuid.UUID) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.participants {
		if p.UserID == userID && p.EventID == eventID {
			participant := p
			return &participant, nil
		}
	}
	return nil, services.ErrNotFound
}

func (m *MemoryDatabase) GetParticipantByID(id uuid.UUID) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participants[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryDatabase) GetParticipantsByEvent(eventID uuid.UUID) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var participants []models.Participant
	for _, p := range m.participants {
		if p.EventID == eventID {
			p.User = m.users[p.UserID]
			participants = append(participants, p)
		}
	}
	return participants, nil
}

func (m *MemoryDatabase) UpdateParticipantRole(id uuid.UUID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participants[id]
	if !ok {
		return services.ErrNotFound
	}
	p.Role = role
	m.participants[id] = p
	return nil
}

func (m *MemoryDatabase) RemoveParticipant(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.participants, id)
	return nil
}

func (m *MemoryDatabase) TouchPresence(userID, eventID uuid.UUID, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.participants {
		if p.UserID == userID && p.EventID == eventID {
			p.LastSeen = &seenAt
			m.participants[id] = p
			return nil
		}
	}
	return services.ErrNotFound
}

func (m *MemoryDatabase) GetActiveParticipants(eventID uuid.UUID, since time.Time) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var active []models.Participant
	for _, p := range m.participants {
		if p.EventID != eventID || p.LastSeen == nil || !p.LastSeen.After(since) {
			continue
		}
		user, ok := m.users[p.UserID]
		if !ok {
			continue
		}
		p.User = user
		active = append(active, p)
	}
	return active, nil
}

func (m *MemoryDatabase) CreateChatMessage(msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = uuid.New()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.User = m.users[msg.UserID]
	m.chatMessages = append(m.chatMessages, *msg)
	return nil
}

func (m *MemoryDatabase) GetChatMessages(eventID uuid.UUID) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var messages []models.ChatMessage
	for _, msg := range m.chatMessages {
		if msg.EventID == eventID {
			msg.User = m.users[msg.UserID]
			messages = append(messages, msg)
		}
	}
	return messages, nil
}
