package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const uniqueViolation = "23505"

// querier is the subset of *sql.DB and *sql.Tx used by the repositories.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

type txManager struct {
	DB *sql.DB
}

// NewTxManager returns a TxManager backed by database transactions on db.
func NewTxManager(db *sql.DB) domain.TxManager {
	return &txManager{DB: db}
}

// WithinTx begins a transaction, runs fn and commits. Nested calls join the outer transaction.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

// forUpdate returns a row-locking clause when ctx carries a transaction.
func forUpdate(ctx context.Context) string {
	if _, ok := txFromContext(ctx); ok {
		return " FOR UPDATE"
	}
	return ""
}

// allocateID hands out the next id for kind under parent, starting at 1.
func allocateID(ctx context.Context, q querier, kind, parent string) (int64, error) {
	query := `
		INSERT INTO id_allocations (kind, parent, next_id)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, parent) DO UPDATE SET next_id = id_allocations.next_id + 1
		RETURNING next_id
	`
	var id int64
	if err := q.QueryRowContext(ctx, query, kind, parent).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", kind, err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullDate(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func scanDate(n sql.NullTime) *domain.Date {
	if !n.Valid {
		return nil
	}
	d := domain.NewDate(n.Time.Year(), n.Time.Month(), n.Time.Day())
	return &d
}
