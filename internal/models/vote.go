package models

import (
	"github.com/google/uuid"
)

type Vote struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"not null;uniqueIndex:idx_vote_user_item"`
	AgendaItemID uuid.UUID `gorm:"not null;uniqueIndex:idx_vote_user_item;index"`
	EventID      uuid.UUID `gorm:"not null;index"`
}
