package assistant_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/assistant"
	"github.com/thereayou/planora/internal/database"
	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

// scriptedStream отдает заранее заданные события и завершается io.EOF.
// Канал gate, если задан, блокирует первый Next до закрытия.
type scriptedStream struct {
	events []assistant.StreamEvent
	i      int
	gate   chan struct{}
}

func (s *scriptedStream) Next() (*assistant.StreamEvent, error) {
	if s.gate != nil {
		<-s.gate
		s.gate = nil
	}
	if s.i >= len(s.events) {
		return nil, io.EOF
	}
	event := s.events[s.i]
	s.i++
	return &event, nil
}

func (s *scriptedStream) Close() error { return nil }

type fakeProvider struct {
	stream *scriptedStream
	err    error
}

func (p *fakeProvider) Generate(_ context.Context, _ assistant.GenerateRequest) (assistant.EventStream, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.stream, nil
}

type harness struct {
	store        *database.MemoryDatabase
	guard        *assistant.MemoryGuard
	orchestrator *assistant.Orchestrator

	owner  *models.User
	viewer *models.User
	event  *models.Event
}

func newHarness(t *testing.T, provider assistant.Provider) *harness {
	t.Helper()

	store := database.NewMemoryDatabase()
	logger := zap.NewNop()

	users := services.NewUserService(store, logger)
	events := services.NewEventService(store, logger)
	agenda := services.NewAgendaService(store, logger)
	participants := services.NewParticipantService(store, logger)

	owner, err := users.UpsertFromIdentity(services.IdentityEvent{
		ExternalID: "ext-owner",
		Emails:     []string{"owner@example.com"},
		FirstName:  "Olga",
	})
	if err != nil {
		t.Fatalf("UpsertFromIdentity failed: %v", err)
	}
	viewer, err := users.UpsertFromIdentity(services.IdentityEvent{
		ExternalID: "ext-viewer",
		Emails:     []string{"viewer@example.com"},
		FirstName:  "Vera",
	})
	if err != nil {
		t.Fatalf("UpsertFromIdentity failed: %v", err)
	}

	event, err := events.CreateEvent(owner.ID, services.CreateEventInput{
		Title:    "Quarterly Review",
		Date:     time.Date(2026, 11, 3, 14, 0, 0, 0, time.UTC),
		Duration: 90,
		Status:   models.EventStatusUpcoming,
		Tone:     models.EventToneFormal,
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if err := participants.Add(owner.ID, event.ID, viewer.ID, models.RoleViewer); err != nil {
		t.Fatalf("add viewer failed: %v", err)
	}

	guard := assistant.NewMemoryGuard()
	orchestrator := assistant.NewOrchestrator(
		store, participants, agenda, provider, guard, nil, logger, 5*time.Second,
	)

	return &harness{
		store:        store,
		guard:        guard,
		orchestrator: orchestrator,
		owner:        owner,
		viewer:       viewer,
		event:        event,
	}
}

func TestSendMessageGeneratesReply(t *testing.T) {
	provider := &fakeProvider{stream: &scriptedStream{events: []assistant.StreamEvent{
		{Type: assistant.EventText, Text: "Sure, I added "},
		{Type: assistant.EventText, Text: "a short break."},
		{Type: assistant.EventTool, Tool: &assistant.ToolInvocation{
			Title:    "Break",
			Duration: 15,
			Type:     "break",
		}},
	}}}
	h := newHarness(t, provider)

	msg, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "add a break", models.ChatRoleUser)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.Role != models.ChatRoleUser {
		t.Fatalf("expected user role, got %q", msg.Role)
	}

	h.orchestrator.Wait()

	messages, err := h.orchestrator.GetMessages(h.owner.ID, h.event.ID)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(messages))
	}
	if messages[0].Role != models.ChatRoleUser || messages[1].Role != models.ChatRoleAssistant {
		t.Fatalf("unexpected roles: %q, %q", messages[0].Role, messages[1].Role)
	}
	reply := messages[1].Content
	if !strings.HasPrefix(reply, "Sure, I added a short break.") {
		t.Fatalf("reply missing streamed text: %q", reply)
	}
	if !strings.HasSuffix(reply, "Created agenda items: Break.") {
		t.Fatalf("reply missing created-items suffix: %q", reply)
	}

	items, _ := h.store.GetAgendaItems(h.event.ID)
	if len(items) != 1 || items[0].Title != "Break" {
		t.Fatalf("expected one item %q, got %+v", "Break", items)
	}
	// Пустая повестка: старт пункта равен времени начала события
	if items[0].StartTime != "14:00" {
		t.Fatalf("expected start 14:00, got %q", items[0].StartTime)
	}

	// Замок снят: новое сообщение принимается
	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "thanks", models.ChatRoleUser); err != nil {
		t.Fatalf("guard not released: %v", err)
	}
	h.orchestrator.Wait()
}

func TestSendMessageRejectedWhileGenerating(t *testing.T) {
	gate := make(chan struct{})
	provider := &fakeProvider{stream: &scriptedStream{
		gate:   gate,
		events: []assistant.StreamEvent{{Type: assistant.EventText, Text: "ok"}},
	}}
	h := newHarness(t, provider)

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "first", models.ChatRoleUser); err != nil {
		t.Fatalf("first SendMessage failed: %v", err)
	}

	_, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "second", models.ChatRoleUser)
	if !errors.Is(err, services.ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}

	close(gate)
	h.orchestrator.Wait()

	// Отклоненное сообщение не попало в транскрипт
	messages, _ := h.orchestrator.GetMessages(h.owner.ID, h.event.ID)
	for _, msg := range messages {
		if msg.Content == "second" {
			t.Fatalf("rejected message was persisted")
		}
	}
}

func TestProviderFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	h := newHarness(t, provider)

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "hello", models.ChatRoleUser); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	h.orchestrator.Wait()

	messages, _ := h.orchestrator.GetMessages(h.owner.ID, h.event.ID)
	if len(messages) != 2 {
		t.Fatalf("expected fallback assistant message, got %d messages", len(messages))
	}
	if messages[1].Content != assistant.FallbackMessage {
		t.Fatalf("expected fallback content, got %q", messages[1].Content)
	}

	// Замок освобожден на пути ошибки
	acquired, err := h.guard.TryAcquire(context.Background(), h.event.ID)
	if err != nil || !acquired {
		t.Fatalf("guard still held after failure: %v %v", acquired, err)
	}
}

func TestStreamErrorDoesNotAbortSession(t *testing.T) {
	provider := &fakeProvider{stream: &scriptedStream{events: []assistant.StreamEvent{
		{Type: assistant.EventText, Text: "partial"},
		{Type: assistant.EventError, Err: errors.New("hiccup")},
		{Type: assistant.EventText, Text: " answer"},
	}}}
	h := newHarness(t, provider)

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "hi", models.ChatRoleUser); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	h.orchestrator.Wait()

	messages, _ := h.orchestrator.GetMessages(h.owner.ID, h.event.ID)
	if messages[len(messages)-1].Content != "partial answer" {
		t.Fatalf("expected text around stream error, got %q", messages[len(messages)-1].Content)
	}
}

func TestInvalidToolCallIsSkipped(t *testing.T) {
	provider := &fakeProvider{stream: &scriptedStream{events: []assistant.StreamEvent{
		{Type: assistant.EventTool, Tool: &assistant.ToolInvocation{Title: "", Duration: 10, Type: "break"}},
		{Type: assistant.EventTool, Tool: &assistant.ToolInvocation{Title: "Q&A", Duration: 0, Type: "discussion"}},
		{Type: assistant.EventTool, Tool: &assistant.ToolInvocation{Title: "Demo", Duration: 20, Type: "talk"}},
		{Type: assistant.EventText, Text: "done"},
	}}}
	h := newHarness(t, provider)

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "plan", models.ChatRoleUser); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	h.orchestrator.Wait()

	items, _ := h.store.GetAgendaItems(h.event.ID)
	if len(items) != 0 {
		t.Fatalf("invalid tool calls must not create items, got %d", len(items))
	}

	messages, _ := h.orchestrator.GetMessages(h.owner.ID, h.event.ID)
	if messages[len(messages)-1].Content != "done" {
		t.Fatalf("expected plain text reply, got %q", messages[len(messages)-1].Content)
	}
}

func TestToolCallAppendsAfterLastItem(t *testing.T) {
	provider := &fakeProvider{stream: &scriptedStream{events: []assistant.StreamEvent{
		{Type: assistant.EventTool, Tool: &assistant.ToolInvocation{Title: "Wrap-up", Duration: 10, Type: "discussion"}},
	}}}
	h := newHarness(t, provider)

	// Последний пункт: 14:30 + 45 минут
	if err := h.store.CreateAgendaItem(&models.AgendaItem{
		EventID:   h.event.ID,
		Title:     "Deep Dive",
		Duration:  45,
		StartTime: "14:30",
		Type:      models.AgendaItemPresentation,
	}); err != nil {
		t.Fatalf("CreateAgendaItem failed: %v", err)
	}

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "wrap up", models.ChatRoleUser); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	h.orchestrator.Wait()

	items, _ := h.store.GetAgendaItems(h.event.ID)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Title != "Wrap-up" || items[1].StartTime != "15:15" {
		t.Fatalf("expected Wrap-up at 15:15, got %q at %q", items[1].Title, items[1].StartTime)
	}
}

func TestChatAccessControl(t *testing.T) {
	h := newHarness(t, &fakeProvider{stream: &scriptedStream{}})

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.viewer.ID, "hi", models.ChatRoleUser); !errors.Is(err, services.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for viewer, got %v", err)
	}
	if _, err := h.orchestrator.GetMessages(h.viewer.ID, h.event.ID); !errors.Is(err, services.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for viewer, got %v", err)
	}

	if _, err := h.orchestrator.SendMessage(context.Background(), h.event.ID, h.owner.ID, "   ", models.ChatRoleUser); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank content, got %v", err)
	}
}
