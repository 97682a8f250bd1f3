package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/inventorylog"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

// Entry is one mutation bound to a product and its originating record.
type Entry struct {
	ProductID   uuid.UUID
	Mutation    Mutation
	ReferenceID *uuid.UUID
	Note        *string
}

// Service applies mutations to the counters and appends the matching ledger
// entry. Callers pass the open transaction so both writes commit together.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	Seed(ctx context.Context, tx *gorm.DB, entry Entry) error
	Observe(m Mutation)
}

// ServiceParams wires the stock service.
type ServiceParams struct {
	StockRepo Repository
	LogRepo   inventorylog.Repository
	Metrics   *metrics.InventoryMetrics
	Now       func() time.Time
}

type service struct {
	stock   Repository
	logs    inventorylog.Repository
	metrics *metrics.InventoryMetrics
	now     func() time.Time
}

// NewService builds a stock service.
func NewService(params ServiceParams) (Service, error) {
	if params.StockRepo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.LogRepo == nil {
		return nil, fmt.Errorf("inventory log repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		stock:   params.StockRepo,
		logs:    params.LogRepo,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Record updates existing counters, then appends the ledger entry.
func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if entry.Mutation.ChangesStock() {
		if err := s.stock.WithTx(tx).Apply(ctx, entry.ProductID, entry.Mutation); err != nil {
			return err
		}
	}
	return s.appendLog(ctx, tx, entry)
}

// Seed creates the counters for a new product from its opening mutation.
func (s *service) Seed(ctx context.Context, tx *gorm.DB, entry Entry) error {
	levels := entry.Mutation.Apply(Levels{})
	if err := s.stock.WithTx(tx).Create(ctx, entry.ProductID, levels); err != nil {
		return fmt.Errorf("create stock record: %w", err)
	}
	return s.appendLog(ctx, tx, entry)
}

func (s *service) appendLog(ctx context.Context, tx *gorm.DB, entry Entry) error {
	logEntry := &models.InventoryLog{
		ProductID:       entry.ProductID,
		ActionType:      entry.Mutation.Action,
		QuantityChanged: entry.Mutation.LogQuantity,
		ReferenceID:     entry.ReferenceID,
		Note:            entry.Note,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.logs.WithTx(tx).Append(ctx, logEntry); err != nil {
		return fmt.Errorf("append inventory log: %w", err)
	}
	return nil
}

// Observe publishes a committed mutation to the inventory metrics.
func (s *service) Observe(m Mutation) {
	s.metrics.RecordMutation(m.Action.String(), m.LogQuantity)
}
