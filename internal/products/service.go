package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

// Service exposes catalog and company-side stock operations.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateMasterCount(ctx context.Context, productID uuid.UUID, masterCount int) error
	Restock(ctx context.Context, productID uuid.UUID, input AdjustStockInput) error
	RemoveDefective(ctx context.Context, productID uuid.UUID, input AdjustStockInput) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ServiceParams wires the product service.
type ServiceParams struct {
	DB          txRunner
	Repo        Repository
	StockRepo   stock.Repository
	Stock       stock.Service
	Invalidator cacheInvalidator
	Logger      *logger.Logger
}

type service struct {
	db          txRunner
	repo        Repository
	stockRepo   stock.Repository
	stock       stock.Service
	invalidator cacheInvalidator
	logg        *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.StockRepo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		stockRepo:   params.StockRepo,
		stock:       params.Stock,
		invalidator: params.Invalidator,
		logg:        params.Logger,
	}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListWithStock(ctx)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "products not found")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewProductDTO(row))
	}
	return out, nil
}

// CreateProduct inserts the product, seeds its counters and records the
// opening company purchase in one transaction.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	opening, err := stock.ForAddProduct(input.MasterCount)
	if err != nil {
		return nil, err
	}

	product := &models.Product{Name: name, Description: input.Description}
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		return s.stock.Seed(ctx, tx, stock.Entry{ProductID: product.ID, Mutation: opening})
	}); err != nil {
		return nil, pkgerrors.FromStore(err, "product not found")
	}

	s.afterMutation(ctx, product.ID, opening)

	levels := opening.Apply(stock.Levels{})
	product.Stock = &models.ProductStock{
		ProductID:      product.ID,
		MasterCount:    levels.Master,
		AvailableCount: levels.Available,
	}
	dto := NewProductDTO(*product)
	return &dto, nil
}

// UpdateMasterCount overwrites master_count only; available_count and the
// ledger are left untouched.
func (s *service) UpdateMasterCount(ctx context.Context, productID uuid.UUID, masterCount int) error {
	if masterCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "masterCount must be zero or greater")
	}
	if err := s.stockRepo.SetMaster(ctx, productID, masterCount); err != nil {
		return pkgerrors.FromStore(err, "product not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) Restock(ctx context.Context, productID uuid.UUID, input AdjustStockInput) error {
	m, err := stock.ForRestock(input.Quantity)
	if err != nil {
		return err
	}
	return s.adjust(ctx, productID, m, input.Note)
}

func (s *service) RemoveDefective(ctx context.Context, productID uuid.UUID, input AdjustStockInput) error {
	m, err := stock.ForDefective(input.Quantity)
	if err != nil {
		return err
	}
	return s.adjust(ctx, productID, m, input.Note)
}

func (s *service) adjust(ctx context.Context, productID uuid.UUID, m stock.Mutation, note *string) error {
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.stock.Record(ctx, tx, stock.Entry{ProductID: productID, Mutation: m, Note: note})
	}); err != nil {
		return pkgerrors.FromStore(err, "product not found")
	}
	s.afterMutation(ctx, productID, m)
	return nil
}

func (s *service) afterMutation(ctx context.Context, productID uuid.UUID, m stock.Mutation) {
	s.stock.Observe(m)
	ctx = s.logg.WithProductID(ctx, productID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{"action": m.Action.String(), "quantity": m.LogQuantity})
	s.logg.Info(ctx, "stock mutation committed")
	s.invalidate(ctx)
}

func (s *service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "summary cache invalidation failed")
	}
}
