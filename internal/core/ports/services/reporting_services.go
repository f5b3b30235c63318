package services

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// ReportingService defines operations for generating financial statements.
// Integrity problems are reported on the statement, not as errors.
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, companyID string, asOf time.Time) (*domain.TrialBalance, error)

	// ProfitAndLoss generates a profit and loss report for [from, to]
	ProfitAndLoss(ctx context.Context, companyID string, from, to time.Time) (*domain.ProfitAndLoss, error)

	// BalanceSheet generates a balance sheet report as of a specific date
	BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*domain.BalanceSheet, error)
}
