package domain

import "context"

// TxManager runs a function inside a single store transaction. Repositories
// called with the context passed to fn take part in that transaction.
// A non-nil error from fn rolls the transaction back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
