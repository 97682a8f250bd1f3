package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// InventoryLog is an immutable signed quantity change for a product.
type InventoryLog struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	ActionType      enums.InventoryAction `gorm:"column:action_type;not null"`
	QuantityChanged int                   `gorm:"column:quantity_changed;not null"`
	ReferenceID     *uuid.UUID            `gorm:"column:reference_id;type:uuid"`
	Note            *string               `gorm:"column:note"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}

func (InventoryLog) TableName() string {
	return "inventory_logs"
}

func (l *InventoryLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
