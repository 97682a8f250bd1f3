package transactions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

func newPostgresMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	conn, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewRepository(conn), mock, mockDB
}

func TestMarkReturnedPostgres(t *testing.T) {
	t.Run("stamps an open transaction", func(t *testing.T) {
		repo, mock, mockDB := newPostgresMockRepository(t)
		defer mockDB.Close()
		id := uuid.New()

		mock.ExpectExec(`UPDATE "student_transactions" SET "return_date"=\$1 WHERE id = \$2 AND return_date IS NULL`).
			WithArgs(sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkReturned(context.Background(), id, time.Now()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already returned is a state conflict", func(t *testing.T) {
		repo, mock, mockDB := newPostgresMockRepository(t)
		defer mockDB.Close()
		id := uuid.New()

		mock.ExpectExec(`UPDATE "student_transactions" SET "return_date"=\$1 WHERE id = \$2 AND return_date IS NULL`).
			WithArgs(sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkReturned(context.Background(), id, time.Now())
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeStateConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors pass through", func(t *testing.T) {
		repo, mock, mockDB := newPostgresMockRepository(t)
		defer mockDB.Close()
		boom := errors.New("connection reset")

		mock.ExpectExec(`UPDATE "student_transactions"`).WillReturnError(boom)

		err := repo.MarkReturned(context.Background(), uuid.New(), time.Now())
		assert.ErrorIs(t, err, boom)
	})
}

func TestDeletePostgres(t *testing.T) {
	t.Run("removes the row", func(t *testing.T) {
		repo, mock, mockDB := newPostgresMockRepository(t)
		defer mockDB.Close()
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM "student_transactions" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent delete loses", func(t *testing.T) {
		repo, mock, mockDB := newPostgresMockRepository(t)
		defer mockDB.Close()
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM "student_transactions" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListNewestFirstPostgres(t *testing.T) {
	repo, mock, mockDB := newPostgresMockRepository(t)
	defer mockDB.Close()
	newer, older := uuid.New(), uuid.New()
	productID := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "product_id", "student_name", "transaction_type", "quantity", "issue_date", "created_at"}).
		AddRow(newer.String(), productID.String(), "Asha", "borrowed", 2, now, now).
		AddRow(older.String(), productID.String(), "Ravi", "purchased", 1, now, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT \* FROM "student_transactions" ORDER BY created_at DESC,id DESC`).
		WillReturnRows(rows)

	got, err := repo.ListNewestFirst(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0].ID)
	assert.Equal(t, "Ravi", got[1].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
