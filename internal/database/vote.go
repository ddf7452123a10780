package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thereayou/planora/internal/models"
)

// ToggleVote переключает голос пользователя за пункт повестки. Проверка
// существования, запись голоса и счетчик обновляются одной транзакцией с
// блокировкой строки пункта: два конкурентных переключения не могут
// прочитать один и тот же счетчик.
func (d *Database) ToggleVote(userID, itemID, eventID uuid.UUID) (bool, int, error) {
	var voted bool
	var votes int

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var item models.AgendaItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, "id = ?", itemID).Error
		if err != nil {
			return wrapNotFound(err)
		}

		var existing models.Vote
		err = tx.Where("user_id = ? AND agenda_item_id = ?", userID, itemID).First(&existing).Error

		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			item.Votes--
			voted = false

		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: userID, AgendaItemID: itemID, EventID: eventID}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			item.Votes++
			voted = true

		default:
			return err
		}

		votes = item.Votes
		return tx.Model(&models.AgendaItem{}).
			Where("id = ?", itemID).
			UpdateColumn("votes", item.Votes).Error
	})

	return voted, votes, err
}

// GetVotersByItem возвращает пользователей, проголосовавших за пункт
func (d *Database) GetVotersByItem(itemID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.
		Joins("JOIN votes ON votes.user_id = users.id").
		Where("votes.agenda_item_id = ?", itemID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (d *Database) CountVotesByItem(itemID uuid.UUID) (int, error) {
	var count int64
	err := d.db.Model(&models.Vote{}).Where("agenda_item_id = ?", itemID).Count(&count).Error
	return int(count), err
}
