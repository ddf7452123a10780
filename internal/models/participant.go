package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// In проверяет, входит ли роль в набор разрешенных
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

type Participant struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID   uuid.UUID `gorm:"not null;uniqueIndex:idx_participant_user_event"`
	EventID  uuid.UUID `gorm:"not null;uniqueIndex:idx_participant_user_event;index"`
	Role     Role      `gorm:"not null;check:role IN ('owner','editor','viewer')"`
	LastSeen *time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
}
