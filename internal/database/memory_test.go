package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/database"
	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

func newTestUser(t *testing.T, store *database.MemoryDatabase, externalID, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:       "User " + externalID,
		Email:      email,
		ExternalID: externalID,
	}
	if err := store.UpsertUserByExternalID(user); err != nil {
		t.Fatalf("UpsertUserByExternalID failed: %v", err)
	}
	return user
}

func newTestEvent(t *testing.T, store *database.MemoryDatabase, ownerID uuid.UUID) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:     "Team Offsite",
		Date:      time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC),
		Duration:  180,
		Status:    models.EventStatusUpcoming,
		Tone:      models.EventToneCasual,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	if err := store.CreateEventWithOwner(event); err != nil {
		t.Fatalf("CreateEventWithOwner failed: %v", err)
	}
	return event
}

func newTestItem(t *testing.T, store *database.MemoryDatabase, eventID uuid.UUID, title string) *models.AgendaItem {
	t.Helper()
	item := &models.AgendaItem{
		EventID:   eventID,
		Title:     title,
		Duration:  30,
		StartTime: "10:00",
		Type:      models.AgendaItemActivity,
	}
	if err := store.CreateAgendaItem(item); err != nil {
		t.Fatalf("CreateAgendaItem failed: %v", err)
	}
	return item
}

func TestCreateEventWithOwner(t *testing.T) {
	store := database.NewMemoryDatabase()
	owner := newTestUser(t, store, "ext-1", "owner@example.com")
	event := newTestEvent(t, store, owner.ID)

	participant, err := store.GetParticipant(owner.ID, event.ID)
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if participant.Role != models.RoleOwner {
		t.Fatalf("expected owner role, got %q", participant.Role)
	}

	participants, err := store.GetParticipantsByEvent(event.ID)
	if err != nil {
		t.Fatalf("GetParticipantsByEvent failed: %v", err)
	}
	if len(participants) != 1 {
		t.Fatalf("expected exactly one participant, got %d", len(participants))
	}
}

func TestAgendaOrdering(t *testing.T) {
	store := database.NewMemoryDatabase()
	owner := newTestUser(t, store, "ext-1", "owner@example.com")
	event := newTestEvent(t, store, owner.ID)

	first := newTestItem(t, store, event.ID, "Welcome")
	second := newTestItem(t, store, event.ID, "Keynote")
	third := newTestItem(t, store, event.ID, "Lunch")

	t.Run("appends items with contiguous order", func(t *testing.T) {
		items, err := store.GetAgendaItems(event.ID)
		if err != nil {
			t.Fatalf("GetAgendaItems failed: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		for i, item := range items {
			if item.Order != i {
				t.Fatalf("item %q has order %d, want %d", item.Title, item.Order, i)
			}
		}
	})

	t.Run("rejects reorder with wrong id set", func(t *testing.T) {
		err := store.ReorderAgendaItems(event.ID, []uuid.UUID{first.ID, second.ID})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation for short list, got %v", err)
		}

		err = store.ReorderAgendaItems(event.ID, []uuid.UUID{first.ID, first.ID, second.ID})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation for duplicate id, got %v", err)
		}

		err = store.ReorderAgendaItems(event.ID, []uuid.UUID{first.ID, second.ID, uuid.New()})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation for foreign id, got %v", err)
		}
	})

	t.Run("applies valid reorder", func(t *testing.T) {
		if err := store.ReorderAgendaItems(event.ID, []uuid.UUID{third.ID, first.ID, second.ID}); err != nil {
			t.Fatalf("ReorderAgendaItems failed: %v", err)
		}

		items, _ := store.GetAgendaItems(event.ID)
		got := []string{items[0].Title, items[1].Title, items[2].Title}
		want := []string{"Lunch", "Welcome", "Keynote"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order after reorder = %v, want %v", got, want)
			}
		}
	})

	t.Run("compacts order after delete", func(t *testing.T) {
		// Порядок сейчас: Lunch(0), Welcome(1), Keynote(2)
		if err := store.DeleteAgendaItem(first.ID); err != nil {
			t.Fatalf("DeleteAgendaItem failed: %v", err)
		}

		items, _ := store.GetAgendaItems(event.ID)
		if len(items) != 2 {
			t.Fatalf("expected 2 items after delete, got %d", len(items))
		}
		for i, item := range items {
			if item.Order != i {
				t.Fatalf("item %q has order %d after delete, want %d", item.Title, item.Order, i)
			}
		}
		if items[0].Title != "Lunch" || items[1].Title != "Keynote" {
			t.Fatalf("unexpected titles after delete: %q, %q", items[0].Title, items[1].Title)
		}
	})
}

func TestToggleVote(t *testing.T) {
	store := database.NewMemoryDatabase()
	owner := newTestUser(t, store, "ext-1", "owner@example.com")
	voter := newTestUser(t, store, "ext-2", "voter@example.com")
	event := newTestEvent(t, store, owner.ID)
	item := newTestItem(t, store, event.ID, "Keynote")

	voted, votes, err := store.ToggleVote(voter.ID, item.ID, event.ID)
	if err != nil {
		t.Fatalf("ToggleVote failed: %v", err)
	}
	if !voted || votes != 1 {
		t.Fatalf("first toggle: voted=%v votes=%d, want true/1", voted, votes)
	}

	// Счетчик на пункте совпадает с числом строк голосов
	count, err := store.CountVotesByItem(item.ID)
	if err != nil {
		t.Fatalf("CountVotesByItem failed: %v", err)
	}
	fetched, _ := store.GetAgendaItem(item.ID)
	if count != fetched.Votes {
		t.Fatalf("vote rows %d != counter %d", count, fetched.Votes)
	}

	voted, votes, err = store.ToggleVote(voter.ID, item.ID, event.ID)
	if err != nil {
		t.Fatalf("second ToggleVote failed: %v", err)
	}
	if voted || votes != 0 {
		t.Fatalf("second toggle: voted=%v votes=%d, want false/0", voted, votes)
	}

	count, _ = store.CountVotesByItem(item.ID)
	if count != 0 {
		t.Fatalf("expected no vote rows after untoggle, got %d", count)
	}

	if _, _, err := store.ToggleVote(voter.ID, uuid.New(), event.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestDeleteEventCascade(t *testing.T) {
	store := database.NewMemoryDatabase()
	owner := newTestUser(t, store, "ext-1", "owner@example.com")
	event := newTestEvent(t, store, owner.ID)
	item := newTestItem(t, store, event.ID, "Keynote")

	if _, _, err := store.ToggleVote(owner.ID, item.ID, event.ID); err != nil {
		t.Fatalf("ToggleVote failed: %v", err)
	}
	if err := store.CreateChatMessage(&models.ChatMessage{
		EventID: event.ID,
		UserID:  owner.ID,
		Role:    models.ChatRoleUser,
		Content: "hello",
	}); err != nil {
		t.Fatalf("CreateChatMessage failed: %v", err)
	}

	if err := store.DeleteEvent(event.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	if _, err := store.GetEvent(event.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected event to be gone, got %v", err)
	}
	if items, _ := store.GetAgendaItems(event.ID); len(items) != 0 {
		t.Fatalf("expected no agenda items, got %d", len(items))
	}
	if count, _ := store.CountVotesByItem(item.ID); count != 0 {
		t.Fatalf("expected no votes, got %d", count)
	}
	if participants, _ := store.GetParticipantsByEvent(event.ID); len(participants) != 0 {
		t.Fatalf("expected no participants, got %d", len(participants))
	}
	if messages, _ := store.GetChatMessages(event.ID); len(messages) != 0 {
		t.Fatalf("expected no chat messages, got %d", len(messages))
	}
}

func TestUpsertUserByExternalID(t *testing.T) {
	store := database.NewMemoryDatabase()
	user := newTestUser(t, store, "ext-1", "old@example.com")
	originalID := user.ID

	updated := &models.User{
		Name:       "Renamed",
		Email:      "new@example.com",
		ExternalID: "ext-1",
	}
	if err := store.UpsertUserByExternalID(updated); err != nil {
		t.Fatalf("UpsertUserByExternalID failed: %v", err)
	}

	if updated.ID != originalID {
		t.Fatalf("upsert created a new row: %s != %s", updated.ID, originalID)
	}

	fetched, err := store.FindUserByEmail("new@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if fetched.Name != "Renamed" {
		t.Fatalf("expected updated name, got %q", fetched.Name)
	}
	if _, err := store.FindUserByEmail("old@example.com"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected old email to be gone, got %v", err)
	}
}

func TestPresenceTracking(t *testing.T) {
	store := database.NewMemoryDatabase()
	owner := newTestUser(t, store, "ext-1", "owner@example.com")
	guest := newTestUser(t, store, "ext-2", "guest@example.com")
	event := newTestEvent(t, store, owner.ID)

	if err := store.AddParticipant(&models.Participant{
		UserID:  guest.ID,
		EventID: event.ID,
		Role:    models.RoleViewer,
	}); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	now := time.Now()
	if err := store.TouchPresence(owner.ID, event.ID, now.Add(-time.Minute)); err != nil {
		t.Fatalf("TouchPresence failed: %v", err)
	}
	if err := store.TouchPresence(guest.ID, event.ID, now.Add(-6*time.Minute)); err != nil {
		t.Fatalf("TouchPresence failed: %v", err)
	}

	active, err := store.GetActiveParticipants(event.ID, now.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("GetActiveParticipants failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active participant, got %d", len(active))
	}
	if active[0].UserID != owner.ID {
		t.Fatalf("expected owner to be active, got %s", active[0].UserID)
	}

	if err := store.TouchPresence(uuid.New(), event.ID, now); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-participant, got %v", err)
	}
}

func TestChatMessagesChronological(t *testing.T) {
	store := database.NewMemoryDatabase()
	owner := newTestUser(t, store, "ext-1", "owner@example.com")
	event := newTestEvent(t, store, owner.ID)

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		if err := store.CreateChatMessage(&models.ChatMessage{
			EventID: event.ID,
			UserID:  owner.ID,
			Role:    models.ChatRoleUser,
			Content: content,
		}); err != nil {
			t.Fatalf("CreateChatMessage failed: %v", err)
		}
	}

	messages, err := store.GetChatMessages(event.ID)
	if err != nil {
		t.Fatalf("GetChatMessages failed: %v", err)
	}
	if len(messages) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(messages))
	}
	for i, msg := range messages {
		if msg.Content != contents[i] {
			t.Fatalf("message %d = %q, want %q", i, msg.Content, contents[i])
		}
		if msg.User.Name == "" {
			t.Fatalf("message %d missing author", i)
		}
	}
}
