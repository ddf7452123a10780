package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thereayou/planora/internal/models"
)

// UpsertUserByExternalID создает пользователя либо обновляет профиль
// существующего с тем же внешним id
func (d *Database) UpsertUserByExternalID(user *models.User) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("external_id = ?", user.ExternalID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(user).Error
		}
		if err != nil {
			return err
		}

		existing.Name = user.Name
		existing.Email = user.Email
		existing.Avatar = user.Avatar
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*user = existing
		return nil
	})
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (d *Database) GetUserByExternalID(externalID string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}
