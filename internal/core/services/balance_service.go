package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/utils/accounting"
)

// balanceService derives balances from opening balances and posted entries only.
type balanceService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	ledgerRepo  portsrepo.LedgerReader
}

// NewBalanceService creates a new balance service.
func NewBalanceService(accountRepo portsrepo.AccountReader, ledgerRepo portsrepo.LedgerReader) portssvc.BalanceSvc {
	return &balanceService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

func (s *balanceService) BalanceAsOf(ctx context.Context, companyID, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	totals, err := s.ledgerRepo.PostedTotals(ctx, companyID, []string{accountID}, domain.DateOnly(cutoff))
	if err != nil {
		s.LogError(ctx, err, "Failed to read posted totals", slog.String("account_id", accountID))
		return decimal.Zero, err
	}

	return accounting.Balance(*account, totals[accountID]), nil
}

// SubtreeBalance sums the balances of the active leaves under accountID.
// A leaf root reports its own balance.
func (s *balanceService) SubtreeBalance(ctx context.Context, companyID, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	snap, err := s.ledgerRepo.LoadSnapshot(ctx, companyID, nil, domain.DateOnly(cutoff))
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger snapshot", slog.String("company_id", companyID))
		return decimal.Zero, err
	}

	found := false
	for _, a := range snap.Accounts {
		if a.AccountID == accountID {
			found = true
			break
		}
	}
	if !found {
		return decimal.Zero, apperrors.NewNotFoundError("account " + accountID)
	}

	total := decimal.Zero
	for _, leaf := range accounting.SubtreeLeaves(snap.Accounts, accountID) {
		total = total.Add(accounting.Balance(leaf, snap.Totals[leaf.AccountID]))
	}
	return total, nil
}

// AccountLedger lists an account's posted activity in [from, to] with
// running balances starting from the balance on the day before from.
func (s *balanceService) AccountLedger(ctx context.Context, companyID, accountID string, from, to time.Time) (*domain.AccountLedger, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}

	before, entries, err := s.ledgerRepo.LoadAccountActivity(ctx, companyID, accountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load account activity", slog.String("account_id", accountID))
		return nil, err
	}

	ledger := accounting.BuildAccountLedger(*account, from, to, accounting.Balance(*account, before), entries)
	return &ledger, nil
}
