package dto

import (
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// AsOfParams defines the query parameter for point-in-time reports.
// An empty AsOf means today.
type AsOfParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// PeriodParams defines the query parameters for period reports.
type PeriodParams struct {
	FromDate string `form:"fromDate" binding:"required,datetime=2006-01-02"`
	ToDate   string `form:"toDate" binding:"required,datetime=2006-01-02"`
}

// LedgerParams defines the query parameters for an account ledger.
type LedgerParams struct {
	FromDate string `form:"from" binding:"required,datetime=2006-01-02"`
	ToDate   string `form:"to" binding:"required,datetime=2006-01-02"`
}

// ParseAsOf resolves the as-of date, defaulting to today (UTC).
func (p AsOfParams) ParseAsOf(now time.Time) (time.Time, error) {
	if p.AsOf == "" {
		return domain.DateOnly(now), nil
	}
	return domain.ParseDate(p.AsOf)
}

// Reports are returned as the domain statement types; they already carry
// JSON tags and the integrity annotations.
type (
	TrialBalanceResponse  = domain.TrialBalance
	BalanceSheetResponse  = domain.BalanceSheet
	ProfitAndLossResponse = domain.ProfitAndLoss
	AccountLedgerResponse = domain.AccountLedger
)
