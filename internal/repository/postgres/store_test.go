package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE profiles`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error {
			_, ok := txFromContext(ctx)
			assert.True(t, ok)
			_, err := conn(ctx, db).ExecContext(ctx, `UPDATE profiles SET display_name = 'x'`)
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested joins outer", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		m := NewTxManager(db)
		err = m.WithinTx(ctx, func(ctx context.Context) error {
			return m.WithinTx(ctx, func(ctx context.Context) error { return nil })
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestForUpdate(t *testing.T) {
	assert.Empty(t, forUpdate(context.Background()))
}

func TestAllocateID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO id_allocations \(kind, parent, next_id\)`).
		WithArgs("conference", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"next_id"}).AddRow(int64(3)))

	id, err := NewConferenceRepository(db).AllocateID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("other")))
}
