package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// VoucherReader defines read operations for voucher data
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher with its entries.
	FindVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a page of voucher headers ordered by date, newest first.
	// It returns the vouchers, a token for the next page, and an error.
	ListVouchers(ctx context.Context, companyID string, filter domain.VoucherFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error)
}

// VoucherTx is the set of operations available inside a voucher unit of
// work. Every method runs on the same store transaction.
type VoucherTx interface {
	// FindVoucherForUpdate loads the voucher with its entries and holds a
	// row lock on it until the transaction ends.
	FindVoucherForUpdate(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error)

	// FindAccountsByIDs reads accounts as seen by this transaction.
	FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error)

	// NextVoucherNumber reserves the next sequence value for the company and type.
	NextVoucherNumber(ctx context.Context, companyID string, voucherType domain.VoucherType) (int64, error)

	// InsertVoucher persists a new voucher header.
	InsertVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucherHeader persists date, narration, totals and audit fields of a draft.
	UpdateVoucherHeader(ctx context.Context, voucher domain.Voucher) error

	// InsertEntry persists one voucher line.
	InsertEntry(ctx context.Context, entry domain.VoucherEntry) error

	// DeleteEntry removes a line from a voucher and reports whether it existed.
	DeleteEntry(ctx context.Context, voucherID, entryID string) (bool, error)

	// MarkPosted moves a draft to POSTED with its final totals and poster.
	// It affects no row when the voucher is no longer a draft, which is
	// reported as apperrors.ErrVoucherNotDraft.
	MarkPosted(ctx context.Context, voucher domain.Voucher) error

	// FindReversal returns the voucher that reverses originalID, or nil.
	FindReversal(ctx context.Context, companyID, originalID string) (*domain.Voucher, error)
}

// VoucherRepositoryFacade combines voucher reads with transactional writes.
type VoucherRepositoryFacade interface {
	VoucherReader
	TransactionManager
}
