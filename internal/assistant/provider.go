package assistant

import (
	"context"
	"fmt"

	"github.com/thereayou/planora/internal/models"
)

// EventType — закрытое множество событий потока провайдера
type EventType string

const (
	EventText  EventType = "text"
	EventTool  EventType = "tool"
	EventError EventType = "error"
)

// ToolInvocation — структурированный вызов инструмента "create agenda item",
// пришедший из потока модели
type ToolInvocation struct {
	Title       string `json:"title"`
	Duration    int    `json:"duration"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

// Validate проверяет аргументы вызова против схемы инструмента
func (t *ToolInvocation) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("tool call: title is required")
	}
	if t.Duration <= 0 {
		return fmt.Errorf("tool call: duration must be positive, got %d", t.Duration)
	}
	switch models.AgendaItemType(t.Type) {
	case models.AgendaItemPresentation, models.AgendaItemDiscussion,
		models.AgendaItemBreak, models.AgendaItemActivity:
		return nil
	default:
		return fmt.Errorf("tool call: unknown agenda item type %q", t.Type)
	}
}

// StreamEvent — один элемент потока: текстовый фрагмент, вызов инструмента
// или ошибка провайдера
type StreamEvent struct {
	Type EventType
	Text string
	Tool *ToolInvocation
	Err  error
}

// EventStream отдает события в порядке прихода; io.EOF по завершении потока
type EventStream interface {
	Next() (*StreamEvent, error)
	Close() error
}

type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// Provider открывает стриминговую сессию генерации против модели
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (EventStream, error)
}
