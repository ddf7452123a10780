package assistant

import (
	"errors"
	"io"
	"testing"

	"github.com/sashabaranov/go-openai"
)

type fakeChatStream struct {
	responses []openai.ChatCompletionStreamResponse
	i         int
	err       error
}

func (f *fakeChatStream) Recv() (openai.ChatCompletionStreamResponse, error) {
	if f.i >= len(f.responses) {
		if f.err != nil {
			return openai.ChatCompletionStreamResponse{}, f.err
		}
		return openai.ChatCompletionStreamResponse{}, io.EOF
	}
	resp := f.responses[f.i]
	f.i++
	return resp, nil
}

func (f *fakeChatStream) Close() error { return nil }

func textChunk(text string) openai.ChatCompletionStreamResponse {
	return openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{
			{Delta: openai.ChatCompletionStreamChoiceDelta{Content: text}},
		},
	}
}

func toolChunk(index int, name, args string) openai.ChatCompletionStreamResponse {
	return openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{
			{Delta: openai.ChatCompletionStreamChoiceDelta{
				ToolCalls: []openai.ToolCall{
					{Index: &index, Function: openai.FunctionCall{Name: name, Arguments: args}},
				},
			}},
		},
	}
}

func drain(t *testing.T, s *openaiStream) []*StreamEvent {
	t.Helper()
	var events []*StreamEvent
	for {
		event, err := s.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		events = append(events, event)
	}
}

func TestStreamAccumulatesToolCallDeltas(t *testing.T) {
	s := &openaiStream{stream: &fakeChatStream{responses: []openai.ChatCompletionStreamResponse{
		textChunk("Adding a break. "),
		toolChunk(0, ToolCreateAgendaItem, `{"title":"Cof`),
		toolChunk(0, "", `fee Break","dur`),
		toolChunk(0, "", `ation":15,"type":"break"}`),
	}}}

	events := drain(t, s)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventText || events[0].Text != "Adding a break. " {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Type != EventTool {
		t.Fatalf("expected tool event, got %+v", events[1])
	}
	tool := events[1].Tool
	if tool.Title != "Coffee Break" || tool.Duration != 15 || tool.Type != "break" {
		t.Fatalf("unexpected tool invocation: %+v", tool)
	}
}

func TestStreamFlushesOnIndexChange(t *testing.T) {
	s := &openaiStream{stream: &fakeChatStream{responses: []openai.ChatCompletionStreamResponse{
		toolChunk(0, ToolCreateAgendaItem, `{"title":"Intro","duration":10,"type":"presentation"}`),
		toolChunk(1, ToolCreateAgendaItem, `{"title":"Q&A","duration":20,"type":"discussion"}`),
	}}}

	events := drain(t, s)
	if len(events) != 2 {
		t.Fatalf("expected 2 tool events, got %d", len(events))
	}
	if events[0].Tool.Title != "Intro" || events[1].Tool.Title != "Q&A" {
		t.Fatalf("unexpected titles: %q, %q", events[0].Tool.Title, events[1].Tool.Title)
	}
}

func TestStreamRejectsUndeclaredTool(t *testing.T) {
	s := &openaiStream{stream: &fakeChatStream{responses: []openai.ChatCompletionStreamResponse{
		toolChunk(0, "delete_event", `{}`),
	}}}

	events := drain(t, s)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected single error event, got %+v", events)
	}
}

func TestStreamReportsMalformedArguments(t *testing.T) {
	s := &openaiStream{stream: &fakeChatStream{responses: []openai.ChatCompletionStreamResponse{
		toolChunk(0, ToolCreateAgendaItem, `{"title":`),
	}}}

	events := drain(t, s)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected single error event, got %+v", events)
	}
}

func TestStreamSurfacesRecvError(t *testing.T) {
	s := &openaiStream{stream: &fakeChatStream{
		responses: []openai.ChatCompletionStreamResponse{textChunk("partial")},
		err:       errors.New("connection reset"),
	}}

	events := drain(t, s)
	if len(events) != 2 {
		t.Fatalf("expected text + error events, got %d", len(events))
	}
	if events[0].Type != EventText || events[1].Type != EventError {
		t.Fatalf("unexpected event order: %+v", events)
	}
}
