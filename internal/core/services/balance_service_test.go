package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/core/services"
)

func TestBalanceService_BalanceAsOf(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	ledger := new(MockLedgerReader)
	svc := services.NewBalanceService(accounts, ledger)

	cash := testAccount("acc_cash", "1000", "Cash", domain.Asset)
	cash.OpeningBalance = amount("100")
	cutoff := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)

	accounts.On("FindAccountByID", ctx, testCompanyID, "acc_cash").Return(cash, nil).Once()
	ledger.On("PostedTotals", ctx, testCompanyID, []string{"acc_cash"}, domain.DateOnly(cutoff)).
		Return(map[string]domain.PostingTotals{"acc_cash": {Debit: amount("500"), Credit: amount("120")}}, nil).Once()

	bal, err := svc.BalanceAsOf(ctx, testCompanyID, "acc_cash", cutoff)

	require.NoError(t, err)
	assert.True(t, bal.Equal(amount("480")), "got %s", bal)
	ledger.AssertExpectations(t)
}

func TestBalanceService_BalanceAsOf_NoPostings(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	ledger := new(MockLedgerReader)
	svc := services.NewBalanceService(accounts, ledger)

	sales := testAccount("acc_sales", "4000", "Sales", domain.Income)
	accounts.On("FindAccountByID", ctx, testCompanyID, "acc_sales").Return(sales, nil).Once()
	ledger.On("PostedTotals", ctx, testCompanyID, []string{"acc_sales"}, mock.Anything).
		Return(map[string]domain.PostingTotals{}, nil).Once()

	bal, err := svc.BalanceAsOf(ctx, testCompanyID, "acc_sales", fixedNow)

	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestBalanceService_SubtreeBalance(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerReader)
	svc := services.NewBalanceService(new(MockAccountRepository), ledger)

	payables := *testAccount("acc_2000", "2000", "Payables", domain.Liability)
	payables.IsControl = true
	trade := *testAccount("acc_2001", "2001", "Trade payables", domain.Liability)
	trade.ParentAccountID = strPtr("acc_2000")
	cutoff := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	ledger.On("LoadSnapshot", ctx, testCompanyID, (*time.Time)(nil), cutoff).Return(&domain.LedgerSnapshot{
		CompanyID: testCompanyID,
		To:        cutoff,
		Accounts:  []domain.Account{payables, trade},
		Totals:    map[string]domain.PostingTotals{"acc_2001": {Debit: decimal.Zero, Credit: amount("200")}},
	}, nil).Twice()

	bal, err := svc.SubtreeBalance(ctx, testCompanyID, "acc_2000", cutoff)
	require.NoError(t, err)
	assert.True(t, bal.Equal(amount("200")), "got %s", bal)

	_, err = svc.SubtreeBalance(ctx, testCompanyID, "acc_missing", cutoff)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBalanceService_AccountLedger(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	ledger := new(MockLedgerReader)
	svc := services.NewBalanceService(accounts, ledger)

	cash := testAccount("acc_cash", "1000", "Cash", domain.Asset)
	cash.OpeningBalance = amount("50")
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	accounts.On("FindAccountByID", ctx, testCompanyID, "acc_cash").Return(cash, nil).Once()
	ledger.On("LoadAccountActivity", ctx, testCompanyID, "acc_cash", from, to).Return(
		domain.PostingTotals{Debit: amount("500"), Credit: decimal.Zero},
		[]domain.PostedEntry{
			{VoucherEntry: creditLine("e_1", "acc_cash", "300", 1), VoucherNo: "PV-000001", VoucherDate: from},
			{VoucherEntry: debitLine("e_2", "acc_cash", "25", 1), VoucherNo: "RV-000001", VoucherDate: to},
		},
		nil,
	).Once()

	stmt, err := svc.AccountLedger(ctx, testCompanyID, "acc_cash", from, to)

	require.NoError(t, err)
	assert.True(t, stmt.OpeningBalance.Equal(amount("550")))
	require.Len(t, stmt.Lines, 2)
	assert.True(t, stmt.Lines[0].RunningBalance.Equal(amount("250")))
	assert.True(t, stmt.ClosingBalance.Equal(amount("275")))
}

func TestBalanceService_AccountLedger_BadRange(t *testing.T) {
	svc := services.NewBalanceService(new(MockAccountRepository), new(MockLedgerReader))
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.AccountLedger(context.Background(), testCompanyID, "acc_cash", from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
