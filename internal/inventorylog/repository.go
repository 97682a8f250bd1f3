package inventorylog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// ReportRow is a log entry joined with its product name.
type ReportRow struct {
	CreatedAt       time.Time
	ProductID       uuid.UUID
	ProductName     string
	ActionType      enums.InventoryAction
	QuantityChanged int
	ReferenceID     *uuid.UUID
	Note            *string
}

// Repository manages the append-only inventory ledger. Entries are never
// updated or deleted through it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.InventoryLog) error
	ListBetween(ctx context.Context, from, to time.Time) ([]models.InventoryLog, error)
	ListReportRows(ctx context.Context, from, to time.Time) ([]ReportRow, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.InventoryLog, error)
	SumByProduct(ctx context.Context) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, entry *models.InventoryLog) error {
	if entry == nil {
		return fmt.Errorf("inventory log entry required")
	}
	if entry.ProductID == uuid.Nil {
		return fmt.Errorf("inventory log product id required")
	}
	if !entry.ActionType.IsValid() {
		return fmt.Errorf("invalid inventory action %q", entry.ActionType)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListBetween returns entries with created_at in [from, to), oldest first.
func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.InventoryLog, error) {
	var entries []models.InventoryLog
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListReportRows returns entries in [from, to) with product names, oldest first.
func (r *repository) ListReportRows(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	var rows []ReportRow
	if err := r.db.WithContext(ctx).
		Table("inventory_logs AS l").
		Select("l.created_at, l.product_id, COALESCE(p.name, '') AS product_name, l.action_type, l.quantity_changed, l.reference_id, l.note").
		Joins("LEFT JOIN products AS p ON p.id = l.product_id").
		Where("l.created_at >= ? AND l.created_at < ?", from.UTC(), to.UTC()).
		Order("l.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.InventoryLog, error) {
	var entries []models.InventoryLog
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type productSum struct {
	ProductID uuid.UUID
	Total     int64
}

// SumByProduct returns each product's expected available count from the
// ledger. A transaction_deleted entry records zero while the delete restores
// the counters, so every entry sharing its reference is left out.
func (r *repository) SumByProduct(ctx context.Context) (map[uuid.UUID]int, error) {
	deleted := r.db.WithContext(ctx).
		Model(&models.InventoryLog{}).
		Select("reference_id").
		Where("action_type = ? AND reference_id IS NOT NULL", enums.InventoryActionTransactionDeleted)

	var sums []productSum
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryLog{}).
		Select("product_id, COALESCE(SUM(quantity_changed), 0) AS total").
		Where("reference_id IS NULL OR reference_id NOT IN (?)", deleted).
		Group("product_id").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(sums))
	for _, s := range sums {
		out[s.ProductID] = int(s.Total)
	}
	return out, nil
}
