package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductStock holds the owned and currently free unit counts for a product.
type ProductStock struct {
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	MasterCount    int       `gorm:"column:master_count;not null;default:0"`
	AvailableCount int       `gorm:"column:available_count;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductStock) TableName() string {
	return "product_stock"
}
