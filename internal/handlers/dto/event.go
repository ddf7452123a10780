package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

type EventResponse struct {
	ID                   uuid.UUID            `json:"id"`
	Title                string               `json:"title"`
	Date                 time.Time            `json:"date"`
	Duration             int                  `json:"duration"`
	Status               models.EventStatus   `json:"status"`
	ExpectedParticipants int                  `json:"expected_participants"`
	Tone                 models.EventTone     `json:"tone"`
	Goals                string               `json:"goals,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	OwnerID              uuid.UUID            `json:"owner_id"`
	IsPublic             bool                 `json:"is_public"`
	Agenda               []AgendaItemResponse `json:"agenda"`
	Participants         int                  `json:"participants"`
}

type AgendaItemResponse struct {
	ID          uuid.UUID             `json:"id"`
	EventID     uuid.UUID             `json:"event_id"`
	Title       string                `json:"title"`
	Duration    int                   `json:"duration"`
	StartTime   string                `json:"start_time"`
	EndTime     *string               `json:"end_time,omitempty"`
	Description string                `json:"description,omitempty"`
	Votes       int                   `json:"votes"`
	Type        models.AgendaItemType `json:"type"`
	Order       int                   `json:"order"`
	VotedBy     []string              `json:"voted_by"`
}

func FormatAgendaItem(item models.AgendaItem, votedBy []string) AgendaItemResponse {
	if votedBy == nil {
		votedBy = []string{}
	}
	return AgendaItemResponse{
		ID:          item.ID,
		EventID:     item.EventID,
		Title:       item.Title,
		Duration:    item.Duration,
		StartTime:   item.StartTime,
		EndTime:     item.EndTime,
		Description: item.Description,
		Votes:       item.Votes,
		Type:        item.Type,
		Order:       item.Order,
		VotedBy:     votedBy,
	}
}

func FormatEvent(details services.EventDetails) EventResponse {
	agenda := make([]AgendaItemResponse, 0, len(details.Agenda))
	for _, item := range details.Agenda {
		agenda = append(agenda, FormatAgendaItem(item.Item, item.VotedBy))
	}

	event := details.Event
	return EventResponse{
		ID:                   event.ID,
		Title:                event.Title,
		Date:                 event.Date,
		Duration:             event.Duration,
		Status:               event.Status,
		ExpectedParticipants: event.ExpectedParticipants,
		Tone:                 event.Tone,
		Goals:                event.Goals,
		CreatedAt:            event.CreatedAt,
		OwnerID:              event.OwnerID,
		IsPublic:             event.IsPublic,
		Agenda:               agenda,
		Participants:         details.ParticipantCount,
	}
}
