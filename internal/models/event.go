package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusDraft     EventStatus = "draft"
	EventStatusCompleted EventStatus = "completed"
)

type EventTone string

const (
	EventToneFormal EventTone = "formal"
	EventToneCasual EventTone = "casual"
)

type Event struct {
	ID                   uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title                string      `gorm:"not null"`
	Date                 time.Time   `gorm:"not null"`
	Duration             int         `gorm:"not null"` // минуты
	Status               EventStatus `gorm:"not null;check:status IN ('upcoming','draft','completed')"`
	ExpectedParticipants int
	Tone                 EventTone `gorm:"not null;check:tone IN ('formal','casual')"`
	Goals                string
	CreatedAt            time.Time
	OwnerID              uuid.UUID `gorm:"not null;index"`
	IsPublic             bool

	// Связи
	Owner        User          `gorm:"foreignKey:OwnerID"`
	Agenda       []AgendaItem  `gorm:"foreignKey:EventID"`
	Participants []Participant `gorm:"foreignKey:EventID"`
}
