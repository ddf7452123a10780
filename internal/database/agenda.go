package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thereayou/planora/internal/models"
	"github.com/thereayou/planora/internal/services"
)

// CreateAgendaItem вставляет пункт в конец повестки. Строка события
// блокируется на время транзакции, чтобы два конкурентных добавления
// не получили одинаковый порядковый номер.
func (d *Database) CreateAgendaItem(item *models.AgendaItem) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", item.EventID).Error
		if err != nil {
			return wrapNotFound(err)
		}

		var count int64
		if err := tx.Model(&models.AgendaItem{}).Where("event_id = ?", item.EventID).Count(&count).Error; err != nil {
			return err
		}

		item.Order = int(count)
		item.Votes = 0
		return tx.Create(item).Error
	})
}

func (d *Database) GetAgendaItem(id uuid.UUID) (*models.AgendaItem, error) {
	var item models.AgendaItem
	if err := d.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &item, nil
}

func (d *Database) GetAgendaItems(eventID uuid.UUID) ([]models.AgendaItem, error) {
	var items []models.AgendaItem
	err := d.db.
		Where("event_id = ?", eventID).
		Order("item_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *Database) UpdateAgendaItem(item *models.AgendaItem) error {
	return d.db.Save(item).Error
}

// DeleteAgendaItem удаляет голоса пункта, сам пункт и уплотняет порядковые
// номера оставшихся, сохраняя непрерывность 0..n-1
func (d *Database) DeleteAgendaItem(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var item models.AgendaItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return wrapNotFound(err)
		}

		if err := tx.Delete(&models.Vote{}, "agenda_item_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}

		return tx.Model(&models.AgendaItem{}).
			Where("event_id = ? AND item_order > ?", item.EventID, item.Order).
			UpdateColumn("item_order", gorm.Expr("item_order - 1")).Error
	})
}

// ReorderAgendaItems переписывает порядок по переданной последовательности.
// Набор id обязан совпадать с текущими пунктами события, иначе ValidationError
// и порядок остается нетронутым.
func (d *Database) ReorderAgendaItems(eventID uuid.UUID, orderedIDs []uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var items []models.AgendaItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", eventID).
			Find(&items).Error
		if err != nil {
			return err
		}

		if len(items) != len(orderedIDs) {
			return services.ErrValidation
		}
		current := make(map[uuid.UUID]bool, len(items))
		for _, item := range items {
			current[item.ID] = true
		}
		seen := make(map[uuid.UUID]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if !current[id] || seen[id] {
				return services.ErrValidation
			}
			seen[id] = true
		}

		for i, id := range orderedIDs {
			err := tx.Model(&models.AgendaItem{}).
				Where("id = ?", id).
				UpdateColumn("item_order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
