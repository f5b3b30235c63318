package repositories

import "context"

// TransactionManager runs a voucher unit of work inside one store
// transaction. A non-nil error from fn rolls the transaction back; a nil
// error commits it. Store conflicts that are safe to retry surface as
// apperrors.ErrTransient.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx VoucherTx) error) error
}
