package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Repository persists student transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tx *models.StudentTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StudentTransaction, error)
	ListNewestFirst(ctx context.Context) ([]models.StudentTransaction, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transaction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tx *models.StudentTransaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if db.IsForeignKeyViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StudentTransaction, error) {
	var tx models.StudentTransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *repository) ListNewestFirst(ctx context.Context) ([]models.StudentTransaction, error) {
	var rows []models.StudentTransaction
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkReturned stamps return_date on a transaction that has not been returned
// yet. A transaction that is missing or already returned is reported as a
// state conflict so two concurrent returns cannot both restore stock.
func (r *repository) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.StudentTransaction{}).
		Where("id = ? AND return_date IS NULL", id).
		Update("return_date", returnedAt.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already returned")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StudentTransaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
