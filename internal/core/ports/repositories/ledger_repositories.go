package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// LedgerReader reads posted entries for balances and statements. Draft
// vouchers are never visible through this interface.
type LedgerReader interface {
	// LoadSnapshot reads every account of the company together with posted
	// totals for voucher dates in [from, to] (from nil means no lower bound),
	// all inside one read-only, repeatable-read transaction.
	LoadSnapshot(ctx context.Context, companyID string, from *time.Time, to time.Time) (*domain.LedgerSnapshot, error)

	// PostedTotals sums posted debits and credits for the given accounts with
	// voucher dates up to and including cutoff.
	PostedTotals(ctx context.Context, companyID string, accountIDs []string, cutoff time.Time) (map[string]domain.PostingTotals, error)

	// LoadAccountActivity returns, from one consistent read, the posted totals
	// strictly before from and the posted entries dated within [from, to],
	// ordered by voucher date and posting time.
	LoadAccountActivity(ctx context.Context, companyID, accountID string, from, to time.Time) (domain.PostingTotals, []domain.PostedEntry, error)
}
