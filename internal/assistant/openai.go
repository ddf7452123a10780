package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ToolCreateAgendaItem — имя единственного инструмента, объявляемого модели
const ToolCreateAgendaItem = "create_agenda_item"

var createAgendaItemTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        ToolCreateAgendaItem,
		Description: "Add a single item to the end of the event agenda.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Short title of the agenda item",
				},
				"duration": map[string]any{
					"type":        "integer",
					"description": "Duration in minutes",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Optional longer description",
				},
				"type": map[string]any{
					"type": "string",
					"enum": []string{"presentation", "discussion", "break", "activity"},
				},
			},
			"required": []string{"title", "duration", "type"},
		},
	},
}

type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIProvider(apiKey, model string, maxTokens int, temperature float64) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (EventStream, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Tools:       []openai.Tool{createAgendaItemTool},
		MaxTokens:   p.maxTokens,
		Temperature: float32(p.temperature),
	})
	if err != nil {
		return nil, err
	}
	return &openaiStream{stream: stream}, nil
}

// chatStream — читаемая часть потока chat completion
type chatStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// openaiStream переводит сырой поток chat completion в события StreamEvent.
// Аргументы tool call приходят фрагментами; они накапливаются и вызов
// отдается целиком, когда начинается следующий вызов либо поток закончился.
type openaiStream struct {
	stream  chatStream
	queue   []*StreamEvent
	pending *pendingToolCall
	done    bool
}

type pendingToolCall struct {
	index int
	name  string
	args  strings.Builder
}

func (s *openaiStream) Next() (*StreamEvent, error) {
	for {
		if len(s.queue) > 0 {
			event := s.queue[0]
			s.queue = s.queue[1:]
			return event, nil
		}
		if s.done {
			return nil, io.EOF
		}

		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.done = true
			s.flushPending()
			continue
		}
		if err != nil {
			// Ошибка чтения терминальна для нижележащего соединения:
			// отдаем ее как событие и завершаем поток
			s.done = true
			s.flushPending()
			s.queue = append(s.queue, &StreamEvent{Type: EventError, Err: err})
			continue
		}

		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		for _, tc := range delta.ToolCalls {
			index := 0
			if tc.Index != nil {
				index = *tc.Index
			}
			if s.pending != nil && s.pending.index != index {
				s.flushPending()
			}
			if s.pending == nil {
				s.pending = &pendingToolCall{index: index}
			}
			if tc.Function.Name != "" {
				s.pending.name = tc.Function.Name
			}
			s.pending.args.WriteString(tc.Function.Arguments)
		}

		if delta.Content != "" {
			s.queue = append(s.queue, &StreamEvent{Type: EventText, Text: delta.Content})
		}
		if resp.Choices[0].FinishReason == openai.FinishReasonToolCalls {
			s.flushPending()
		}
	}
}

func (s *openaiStream) flushPending() {
	if s.pending == nil {
		return
	}
	pending := s.pending
	s.pending = nil

	if pending.name != ToolCreateAgendaItem {
		s.queue = append(s.queue, &StreamEvent{
			Type: EventError,
			Err:  fmt.Errorf("model requested undeclared tool %q", pending.name),
		})
		return
	}

	var invocation ToolInvocation
	if err := json.Unmarshal([]byte(pending.args.String()), &invocation); err != nil {
		s.queue = append(s.queue, &StreamEvent{
			Type: EventError,
			Err:  fmt.Errorf("malformed tool call arguments: %w", err),
		})
		return
	}
	s.queue = append(s.queue, &StreamEvent{Type: EventTool, Tool: &invocation})
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
