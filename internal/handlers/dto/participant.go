package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/planora/internal/models"
)

type UserInfo struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Avatar string    `json:"avatar,omitempty"`
}

type ParticipantResponse struct {
	ID       uuid.UUID   `json:"id"`
	EventID  uuid.UUID   `json:"event_id"`
	Role     models.Role `json:"role"`
	LastSeen *time.Time  `json:"last_seen,omitempty"`
	User     UserInfo    `json:"user"`
}

func FormatParticipant(p models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:       p.ID,
		EventID:  p.EventID,
		Role:     p.Role,
		LastSeen: p.LastSeen,
		User: UserInfo{
			ID:     p.User.ID,
			Name:   p.User.Name,
			Email:  p.User.Email,
			Avatar: p.User.Avatar,
		},
	}
}
