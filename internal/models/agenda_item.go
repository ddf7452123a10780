package models

import (
	"github.com/google/uuid"
)

type AgendaItemType string

const (
	AgendaItemPresentation AgendaItemType = "presentation"
	AgendaItemDiscussion   AgendaItemType = "discussion"
	AgendaItemBreak        AgendaItemType = "break"
	AgendaItemActivity     AgendaItemType = "activity"
)

type AgendaItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     uuid.UUID `gorm:"not null;index"`
	Title       string    `gorm:"not null"`
	Duration    int       `gorm:"not null"` // минуты
	StartTime   string    `gorm:"not null"` // "HH:MM"
	EndTime     *string
	Description string
	Votes       int            `gorm:"not null;default:0"`
	Type        AgendaItemType `gorm:"not null;check:type IN ('presentation','discussion','break','activity')"`
	Order       int            `gorm:"column:item_order;not null"`
}
