package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/models"
)

type UserService struct {
	store  Store
	logger *zap.Logger
}

func NewUserService(store Store, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// IdentityEvent — payload вебхука "user created/updated" от identity-провайдера
type IdentityEvent struct {
	ExternalID string
	Emails     []string
	FirstName  string
	LastName   string
	AvatarURL  string
}

// UpsertFromIdentity создает или обновляет пользователя по внешнему id
func (s *UserService) UpsertFromIdentity(event IdentityEvent) (*models.User, error) {
	if event.ExternalID == "" || len(event.Emails) == 0 {
		return nil, ErrValidation
	}

	name := strings.TrimSpace(event.FirstName + " " + event.LastName)
	if name == "" {
		name = event.Emails[0]
	}

	user := &models.User{
		Name:       name,
		Email:      event.Emails[0],
		Avatar:     event.AvatarURL,
		ExternalID: event.ExternalID,
	}

	if err := s.store.UpsertUserByExternalID(user); err != nil {
		return nil, err
	}

	s.logger.Info("user upserted from identity webhook",
		zap.String("user_id", user.ID.String()),
		zap.String("external_id", event.ExternalID))

	return user, nil
}

// ResolveExternal находит внутреннего пользователя по внешнему subject id
func (s *UserService) ResolveExternal(externalID string) (*models.User, error) {
	return s.store.GetUserByExternalID(externalID)
}

// FindByEmail — точный поиск пользователя по email
func (s *UserService) FindByEmail(email string) (*models.User, error) {
	return s.store.FindUserByEmail(email)
}
