package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/utils/accounting"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
	epsilon    decimal.Decimal
	builds     singleflight.Group
	// started counts statement builds. Requests only join builds begun
	// after they arrived, so a statement never predates its request.
	started atomic.Uint64
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingEpsilon sets the tolerance for the trial balance and balance sheet checks.
func WithReportingEpsilon(epsilon decimal.Decimal) ReportingServiceOption {
	return func(s *reportingService) {
		s.epsilon = epsilon
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.LedgerReader, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		ledgerRepo: repo,
		epsilon:    accounting.DefaultEpsilon,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// build collapses concurrent requests for the same statement into one
// snapshot read. A request joins an in-flight build only when that build
// has not read its snapshot yet; otherwise it starts a new one. The shared
// build is detached from any single caller's cancellation; each caller
// still stops waiting when its own ctx ends.
func (s *reportingService) build(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	gen := s.started.Load()
	resultChan := s.builds.DoChan(fmt.Sprintf("%s|%d", key, gen), func() (any, error) {
		s.started.Add(1)
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Shared {
			s.LogDebug(ctx, "Statement build shared", slog.String("key", key))
		}
		return res.Val, res.Err
	}
}

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, companyID string, asOf time.Time) (*domain.TrialBalance, error) {
	asOf = domain.DateOnly(asOf)
	key := fmt.Sprintf("tb|%s|%s", companyID, asOf.Format(domain.DateLayout))

	val, err := s.build(ctx, key, func(ctx context.Context) (any, error) {
		snap, err := s.ledgerRepo.LoadSnapshot(ctx, companyID, nil, asOf)
		if err != nil {
			return nil, err
		}
		tb := accounting.BuildTrialBalance(*snap, s.epsilon)
		return &tb, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build trial balance", slog.String("company_id", companyID))
		return nil, err
	}

	tb := val.(*domain.TrialBalance)
	if !tb.Balanced {
		s.LogError(ctx, fmt.Errorf("trial balance out of balance"), tb.IntegrityWarning,
			slog.String("company_id", companyID),
			slog.String("as_of", asOf.Format(domain.DateLayout)),
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	s.LogInfo(ctx, "Trial balance generated",
		slog.String("company_id", companyID),
		slog.Int("rows", len(tb.Rows)))
	return tb, nil
}

// ProfitAndLoss generates a profit and loss report for [from, to].
// Opening balances are not income or expense activity and are ignored.
func (s *reportingService) ProfitAndLoss(ctx context.Context, companyID string, from, to time.Time) (*domain.ProfitAndLoss, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}
	key := fmt.Sprintf("pl|%s|%s|%s", companyID, from.Format(domain.DateLayout), to.Format(domain.DateLayout))

	val, err := s.build(ctx, key, func(ctx context.Context) (any, error) {
		snap, err := s.ledgerRepo.LoadSnapshot(ctx, companyID, &from, to)
		if err != nil {
			return nil, err
		}
		pl := accounting.BuildProfitAndLoss(*snap)
		return &pl, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build profit and loss", slog.String("company_id", companyID))
		return nil, err
	}

	pl := val.(*domain.ProfitAndLoss)
	s.LogInfo(ctx, "Profit and loss generated",
		slog.String("company_id", companyID),
		slog.String("net_profit", pl.NetProfit.String()))
	return pl, nil
}

// BalanceSheet generates a balance sheet report as of a specific date
func (s *reportingService) BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*domain.BalanceSheet, error) {
	asOf = domain.DateOnly(asOf)
	key := fmt.Sprintf("bs|%s|%s", companyID, asOf.Format(domain.DateLayout))

	val, err := s.build(ctx, key, func(ctx context.Context) (any, error) {
		snap, err := s.ledgerRepo.LoadSnapshot(ctx, companyID, nil, asOf)
		if err != nil {
			return nil, err
		}
		bs := accounting.BuildBalanceSheet(*snap, s.epsilon)
		return &bs, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build balance sheet", slog.String("company_id", companyID))
		return nil, err
	}

	bs := val.(*domain.BalanceSheet)
	if !bs.Balanced {
		s.LogError(ctx, fmt.Errorf("balance sheet out of balance"), bs.IntegrityWarning,
			slog.String("company_id", companyID),
			slog.String("as_of", asOf.Format(domain.DateLayout)),
			slog.String("total_assets", bs.TotalAssets.String()),
			slog.String("total_liabilities_and_equity", bs.TotalLiabilitiesAndEquity.String()))
	}
	s.LogInfo(ctx, "Balance sheet generated", slog.String("company_id", companyID))
	return bs, nil
}
