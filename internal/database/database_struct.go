package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/thereayou/planora/internal/services"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// wrapNotFound приводит ошибку gorm к сигнальной ошибке сервисного слоя
func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}
