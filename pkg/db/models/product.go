package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog entry tracked by the store room.
type Product struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name        string        `gorm:"column:name;not null"`
	Description *string       `gorm:"column:description"`
	Stock       *ProductStock `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Product{},
		&ProductStock{},
		&StudentTransaction{},
		&InventoryLog{},
	}
}
