package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// ProductDTO is the catalog entry returned to clients.
type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	MasterCount  int       `json:"masterCount"`
	Availability int       `json:"availability"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewProductDTO flattens a product and its counters. A product without a
// stock record reports zero for both counts.
func NewProductDTO(product models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		CreatedAt:   product.CreatedAt,
	}
	if product.Stock != nil {
		dto.MasterCount = product.Stock.MasterCount
		dto.Availability = product.Stock.AvailableCount
	}
	return dto
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	MasterCount int
}

// AdjustStockInput carries a restock or defective removal.
type AdjustStockInput struct {
	Quantity int
	Note     *string
}
