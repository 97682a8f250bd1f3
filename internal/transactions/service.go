package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/types"
)

// Service runs the student transaction lifecycle. Every mutation writes the
// transaction row, the stock counters and the ledger entry in one database
// transaction.
type Service interface {
	List(ctx context.Context) ([]TransactionDTO, error)
	Create(ctx context.Context, input CreateTransactionInput) (*TransactionDTO, error)
	Return(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ServiceParams wires the transaction service. Location decides which
// calendar day "today" is for a defaulted issue date.
type ServiceParams struct {
	DB          txRunner
	Repo        Repository
	Stock       stock.Service
	Invalidator cacheInvalidator
	Logger      *logger.Logger
	Location    *time.Location
	Now         func() time.Time
}

type service struct {
	db          txRunner
	repo        Repository
	stock       stock.Service
	invalidator cacheInvalidator
	logg        *logger.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewService constructs a transaction service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		stock:       params.Stock,
		invalidator: params.Invalidator,
		logg:        params.Logger,
		loc:         loc,
		now:         now,
	}, nil
}

func (s *service) List(ctx context.Context) ([]TransactionDTO, error) {
	rows, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "transactions not found")
	}
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewTransactionDTO(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateTransactionInput) (*TransactionDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	name := strings.TrimSpace(input.StudentName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student_name is required")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	m, err := stock.ForCreate(input.TransactionType, quantity)
	if err != nil {
		return nil, err
	}

	now := s.now()
	issue := input.IssueDate
	if issue.IsZero() {
		issue = types.NewDate(now.In(s.loc))
	}
	record := &models.StudentTransaction{
		ProductID:       input.ProductID,
		StudentName:     name,
		USN:             trimmed(input.USN),
		Section:         trimmed(input.Section),
		PhoneNumber:     trimmed(input.PhoneNumber),
		TransactionType: input.TransactionType,
		Quantity:        quantity,
		IssueDate:       issue.Time,
		CreatedAt:       now.UTC(),
	}
	if input.DueDate != nil && !input.DueDate.IsZero() {
		due := input.DueDate.Time
		record.DueDate = &due
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		return s.stock.Record(ctx, tx, stock.Entry{
			ProductID:   record.ProductID,
			Mutation:    m,
			ReferenceID: &record.ID,
		})
	}); err != nil {
		return nil, pkgerrors.FromStore(err, "product not found")
	}

	s.afterMutation(ctx, record, m)
	dto := NewTransactionDTO(*record)
	return &dto, nil
}

// Return closes an open borrow and puts its units back on the shelf.
func (s *service) Return(ctx context.Context, id uuid.UUID) error {
	var (
		record *models.StudentTransaction
		m      stock.Mutation
	)
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		m, err = stock.ForReturn(found.TransactionType, found.IsReturned(), found.Quantity)
		if err != nil {
			return err
		}
		if err := repo.MarkReturned(ctx, id, s.now()); err != nil {
			return err
		}
		record = found
		return s.stock.Record(ctx, tx, stock.Entry{
			ProductID:   found.ProductID,
			Mutation:    m,
			ReferenceID: &found.ID,
		})
	}); err != nil {
		return pkgerrors.FromStore(err, "transaction not found")
	}
	s.afterMutation(ctx, record, m)
	return nil
}

// Delete reverses whatever stock the transaction still holds, leaves a
// zero-quantity audit entry and removes the row.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var (
		record *models.StudentTransaction
		m      stock.Mutation
	)
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		m = stock.ForDelete(found.TransactionType, found.IsReturned(), found.Quantity)
		record = found
		return s.stock.Record(ctx, tx, stock.Entry{
			ProductID:   found.ProductID,
			Mutation:    m,
			ReferenceID: &found.ID,
		})
	}); err != nil {
		return pkgerrors.FromStore(err, "transaction not found")
	}
	s.afterMutation(ctx, record, m)
	return nil
}

func (s *service) afterMutation(ctx context.Context, record *models.StudentTransaction, m stock.Mutation) {
	s.stock.Observe(m)
	ctx = s.logg.WithTransactionID(ctx, record.ID.String())
	ctx = s.logg.WithProductID(ctx, record.ProductID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{"action": m.Action.String(), "quantity": m.LogQuantity})
	s.logg.Info(ctx, "stock mutation committed")
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "summary cache invalidation failed")
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
