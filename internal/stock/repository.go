package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// Repository persists product counters. Every write is a single arithmetic
// UPDATE evaluated by the database.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, productID uuid.UUID, levels Levels) error
	Apply(ctx context.Context, productID uuid.UUID, m Mutation) error
	SetMaster(ctx context.Context, productID uuid.UUID, master int) error
	Get(ctx context.Context, productID uuid.UUID) (*models.ProductStock, error)
	TotalAvailable(ctx context.Context) (int, error)
	AvailableByProduct(ctx context.Context) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, productID uuid.UUID, levels Levels) error {
	record := &models.ProductStock{
		ProductID:      productID,
		MasterCount:    levels.Master,
		AvailableCount: levels.Available,
	}
	return r.db.WithContext(ctx).Create(record).Error
}

const masterExpr = "CASE WHEN master_count + ? < 0 THEN 0 ELSE master_count + ? END"

func (r *repository) Apply(ctx context.Context, productID uuid.UUID, m Mutation) error {
	md, ad := m.MasterDelta, m.AvailableDelta
	availableExpr := gorm.Expr(
		"CASE WHEN available_count + ? < 0 THEN 0 ELSE available_count + ? END",
		ad, ad,
	)
	if ad > 0 {
		availableExpr = gorm.Expr(
			"CASE WHEN available_count + ? > ("+masterExpr+") THEN ("+masterExpr+") "+
				"ELSE available_count + ? END",
			ad, md, md, md, md, ad,
		)
	}

	res := r.db.WithContext(ctx).
		Model(&models.ProductStock{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"master_count":    gorm.Expr(masterExpr, md, md),
			"available_count": availableExpr,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("apply stock mutation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetMaster(ctx context.Context, productID uuid.UUID, master int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductStock{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"master_count": master,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("set master count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Get(ctx context.Context, productID uuid.UUID) (*models.ProductStock, error) {
	var record models.ProductStock
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Take(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) TotalAvailable(ctx context.Context) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductStock{}).
		Select("COALESCE(SUM(available_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum available stock: %w", err)
	}
	return int(total), nil
}

func (r *repository) AvailableByProduct(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []models.ProductStock
	if err := r.db.WithContext(ctx).
		Select("product_id", "available_count").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.AvailableCount
	}
	return out, nil
}
