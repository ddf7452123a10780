package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

// FallbackMessage сохраняется в транскрипт, если вызов провайдера упал
// целиком: тред не должен молча зависнуть в "генерируется"
const FallbackMessage = "I ran into a problem while generating a response. Please try again."

// Notifier рассылает live-обновления подписчикам события
type Notifier interface {
	NotifyChatMessage(eventID uuid.UUID, msg models.ChatMessage)
	NotifyAgendaUpdated(eventID uuid.UUID)
}

// Orchestrator ведет протокол чата с ассистентом: принимает сообщения,
// держит per-event замок генерации, сворачивает поток модели в транскрипт
// и исполняет tool-вызовы против повестки.
type Orchestrator struct {
	store        services.Store
	participants *services.ParticipantService
	agenda       *services.AgendaService
	provider     Provider
	guard        Guard
	notifier     Notifier
	logger       *zap.Logger
	timeout      time.Duration

	wg sync.WaitGroup
}

func NewOrchestrator(
	store services.Store,
	participants *services.ParticipantService,
	agenda *services.AgendaService,
	provider Provider,
	guard Guard,
	notifier Notifier,
	logger *zap.Logger,
	timeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		store:        store,
		participants: participants,
		agenda:       agenda,
		provider:     provider,
		guard:        guard,
		notifier:     notifier,
		logger:       logger,
		timeout:      timeout,
	}
}

// SendMessage добавляет сообщение в тред; только owner и editor.
// Пользовательское сообщение запускает ровно одну фоновую генерацию; если
// генерация для события уже идет, запрос отклоняется целиком — сообщение
// не сохраняется, пары "вопрос без ответа" в транскрипте не возникает.
func (o *Orchestrator) SendMessage(ctx context.Context, eventID, userID uuid.UUID, content string, role models.ChatRole) (*models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, services.ErrValidation
	}

	if _, err := o.participants.Authorize(userID, eventID, models.RoleOwner, models.RoleEditor); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		EventID:   eventID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if role != models.ChatRoleUser {
		if err := o.store.CreateChatMessage(msg); err != nil {
			return nil, err
		}
		o.notifyChat(*msg)
		return msg, nil
	}

	acquired, err := o.guard.TryAcquire(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: generation guard: %v", services.ErrExternalService, err)
	}
	if !acquired {
		return nil, services.ErrGenerationInFlight
	}

	if err := o.store.CreateChatMessage(msg); err != nil {
		if releaseErr := o.guard.Release(ctx, eventID); releaseErr != nil {
			o.logger.Error("failed to release generation guard", zap.Error(releaseErr))
		}
		return nil, err
	}
	o.notifyChat(*msg)

	o.wg.Add(1)
	go o.run(eventID, userID, content)

	return msg, nil
}

// GetMessages возвращает тред в хронологическом порядке; viewer его не видит
func (o *Orchestrator) GetMessages(userID, eventID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := o.participants.Authorize(userID, eventID, models.RoleOwner, models.RoleEditor); err != nil {
		return nil, err
	}
	return o.store.GetChatMessages(eventID)
}

// Wait дожидается завершения всех фоновых генераций. Используется при
// graceful shutdown и в тестах.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run — фоновая часть генерации. Замок снимается на любом пути выхода.
func (o *Orchestrator) run(eventID, userID uuid.UUID, userPrompt string) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	defer func() {
		if err := o.guard.Release(context.Background(), eventID); err != nil {
			o.logger.Error("failed to release generation guard",
				zap.String("event_id", eventID.String()), zap.Error(err))
		}
	}()

	systemPrompt, err := o.buildSystemPrompt(eventID)
	if err != nil {
		o.logger.Error("failed to build system prompt",
			zap.String("event_id", eventID.String()), zap.Error(err))
		o.persistAssistantMessage(eventID, userID, FallbackMessage)
		return
	}

	if err := o.generate(ctx, eventID, userID, systemPrompt, userPrompt); err != nil {
		o.logger.Error("generation failed",
			zap.String("event_id", eventID.String()), zap.Error(err))
		o.persistAssistantMessage(eventID, userID, FallbackMessage)
	}
}

// generate открывает одну стриминговую сессию и сворачивает ее события в
// порядке прихода: текст — в буфер, tool-вызовы — синхронно в повестку,
// ошибки — в лог. Результаты инструментов модели не возвращаются.
func (o *Orchestrator) generate(ctx context.Context, eventID, userID uuid.UUID, systemPrompt, userPrompt string) error {
	stream, err := o.provider.Generate(ctx, GenerateRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrExternalService, err)
	}
	defer stream.Close()

	var buffer strings.Builder
	var createdTitles []string

	for {
		event, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading stream: %v", services.ErrExternalService, err)
		}

		switch event.Type {
		case EventText:
			buffer.WriteString(event.Text)

		case EventTool:
			title, err := o.executeToolCall(eventID, userID, event.Tool)
			if err != nil {
				o.logger.Warn("tool call rejected",
					zap.String("event_id", eventID.String()), zap.Error(err))
				continue
			}
			createdTitles = append(createdTitles, title)

		case EventError:
			// Единичная ошибка в потоке не прерывает сессию
			o.logger.Warn("provider stream error",
				zap.String("event_id", eventID.String()), zap.Error(event.Err))
		}
	}

	if len(createdTitles) > 0 {
		if buffer.Len() > 0 {
			buffer.WriteString("\n\n")
		}
		buffer.WriteString("Created agenda items: ")
		buffer.WriteString(strings.Join(createdTitles, ", "))
		buffer.WriteString(".")
	}

	o.persistAssistantMessage(eventID, userID, buffer.String())
	return nil
}

func (o *Orchestrator) executeToolCall(eventID, userID uuid.UUID, tool *ToolInvocation) (string, error) {
	if tool == nil {
		return "", fmt.Errorf("empty tool invocation")
	}
	if err := tool.Validate(); err != nil {
		return "", err
	}

	startTime, err := o.nextStartTime(eventID)
	if err != nil {
		return "", err
	}

	item, err := o.agenda.CreateItem(userID, eventID, services.CreateAgendaItemInput{
		Title:       tool.Title,
		Duration:    tool.Duration,
		StartTime:   startTime,
		Description: tool.Description,
		Type:        models.AgendaItemType(tool.Type),
	})
	if err != nil {
		return "", err
	}

	o.logger.Info("assistant created agenda item",
		zap.String("event_id", eventID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("title", item.Title))

	if o.notifier != nil {
		o.notifier.NotifyAgendaUpdated(eventID)
	}
	return item.Title, nil
}

// nextStartTime подбирает время начала для нового пункта: конец последнего
// пункта повестки, иначе время начала самого события
func (o *Orchestrator) nextStartTime(eventID uuid.UUID) (string, error) {
	event, err := o.store.GetEvent(eventID)
	if err != nil {
		return "", err
	}
	items, err := o.store.GetAgendaItems(eventID)
	if err != nil {
		return "", err
	}

	if len(items) == 0 {
		return event.Date.Format("15:04"), nil
	}

	last := items[len(items)-1]
	start, err := time.Parse("15:04", last.StartTime)
	if err != nil {
		return last.StartTime, nil
	}
	return start.Add(time.Duration(last.Duration) * time.Minute).Format("15:04"), nil
}

func (o *Orchestrator) buildSystemPrompt(eventID uuid.UUID) (string, error) {
	event, err := o.store.GetEvent(eventID)
	if err != nil {
		return "", err
	}
	items, err := o.store.GetAgendaItems(eventID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an event-planning assistant. You help organizers build and refine the agenda of their event.\n")
	fmt.Fprintf(&b, "Event: %q, %s, %d minutes total, tone: %s.\n",
		event.Title, event.Date.Format("2006-01-02"), event.Duration, event.Tone)
	if event.Goals != "" {
		fmt.Fprintf(&b, "Goals: %s\n", event.Goals)
	}

	if len(items) == 0 {
		b.WriteString("The agenda is currently empty.\n")
	} else {
		b.WriteString("Current agenda:\n")
		for _, item := range items {
			fmt.Fprintf(&b, "%d. %s (%s, %d min, starts %s)\n",
				item.Order+1, item.Title, item.Type, item.Duration, item.StartTime)
		}
	}

	b.WriteString("Use the create_agenda_item tool to add items the user asks for. Keep answers short.")
	return b.String(), nil
}

func (o *Orchestrator) persistAssistantMessage(eventID, userID uuid.UUID, content string) {
	if content == "" {
		content = FallbackMessage
	}

	msg := &models.ChatMessage{
		EventID:   eventID,
		UserID:    userID,
		Role:      models.ChatRoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := o.store.CreateChatMessage(msg); err != nil {
		o.logger.Error("failed to persist assistant message",
			zap.String("event_id", eventID.String()), zap.Error(err))
		return
	}
	o.notifyChat(*msg)
}

func (o *Orchestrator) notifyChat(msg models.ChatMessage) {
	if o.notifier != nil {
		o.notifier.NotifyChatMessage(msg.EventID, msg)
	}
}
