package services

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceSvc derives account balances from opening balances and posted entries.
type BalanceSvc interface {
	// BalanceAsOf returns the natural-signed balance of an account on cutoff.
	BalanceAsOf(ctx context.Context, companyID string, accountID string, cutoff time.Time) (decimal.Decimal, error)

	// SubtreeBalance sums BalanceAsOf over the active leaf accounts under accountID.
	SubtreeBalance(ctx context.Context, companyID string, accountID string, cutoff time.Time) (decimal.Decimal, error)

	// AccountLedger lists posted entries of an account in [from, to] with running balances.
	AccountLedger(ctx context.Context, companyID string, accountID string, from, to time.Time) (*domain.AccountLedger, error)
}
