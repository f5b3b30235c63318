package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/repositories/database/sqlite"
)

const (
	companyID = "co_1"
	userID    = "user_1"
)

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// LedgerStoreTestSuite drives the services against a real SQLite file.
type LedgerStoreTestSuite struct {
	suite.Suite
	store    *sqlite.Store
	ctx      context.Context
	accounts portssvc.AccountSvcFacade
	vouchers portssvc.VoucherSvcFacade
	balances portssvc.BalanceSvc
	reports  portssvc.ReportingService
}

func TestLedgerStoreTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerStoreTestSuite))
}

func (suite *LedgerStoreTestSuite) SetupTest() {
	store, err := sqlite.Open(filepath.Join(suite.T().TempDir(), "ledger.db"))
	suite.Require().NoError(err)
	suite.store = store
	suite.ctx = context.Background()

	repos := store.Repositories()
	eps := amount("0.01")
	suite.accounts = services.NewAccountService(repos.AccountRepo)
	suite.vouchers = services.NewVoucherService(repos.VoucherRepo,
		services.WithEpsilon(eps),
		services.WithPostRetry(3, 10*time.Millisecond))
	suite.balances = services.NewBalanceService(repos.AccountRepo, repos.LedgerRepo)
	suite.reports = services.NewReportingService(repos.LedgerRepo, services.WithReportingEpsilon(eps))
}

func (suite *LedgerStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close())
}

func (suite *LedgerStoreTestSuite) createAccount(code, name string, nature domain.AccountNature, parent *domain.Account, control bool) *domain.Account {
	req := dto.CreateAccountRequest{Code: code, Name: name, Nature: nature, IsControl: control}
	if parent != nil {
		req.ParentAccountID = &parent.AccountID
	}
	acc, err := suite.accounts.CreateAccount(suite.ctx, companyID, req, userID)
	suite.Require().NoError(err)
	return acc
}

type line struct {
	account *domain.Account
	debit   string
	credit  string
}

func (suite *LedgerStoreTestSuite) draft(on string, lines ...line) *domain.Voucher {
	v, err := suite.vouchers.CreateDraft(suite.ctx, companyID, dto.CreateVoucherRequest{
		VoucherType: domain.Journal,
		VoucherDate: on,
		Narration:   "test voucher",
	}, userID)
	suite.Require().NoError(err)
	for _, l := range lines {
		req := dto.AddEntryRequest{AccountID: l.account.AccountID, DebitAmount: decimal.Zero, CreditAmount: decimal.Zero}
		if l.debit != "" {
			req.DebitAmount = amount(l.debit)
		}
		if l.credit != "" {
			req.CreditAmount = amount(l.credit)
		}
		_, err := suite.vouchers.AddEntry(suite.ctx, companyID, v.VoucherID, req, userID)
		suite.Require().NoError(err)
	}
	return v
}

func (suite *LedgerStoreTestSuite) post(on string, lines ...line) *domain.Voucher {
	v := suite.draft(on, lines...)
	posted, err := suite.vouchers.Post(suite.ctx, companyID, v.VoucherID, userID)
	suite.Require().NoError(err)
	return posted
}

func (suite *LedgerStoreTestSuite) balance(acc *domain.Account, on string) decimal.Decimal {
	b, err := suite.balances.BalanceAsOf(suite.ctx, companyID, acc.AccountID, date(on))
	suite.Require().NoError(err)
	return b
}

func (suite *LedgerStoreTestSuite) TestCashSale_BalancesBothSides() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)

	v := suite.post("2024-01-15", line{account: cash, debit: "500"}, line{account: sales, credit: "500"})

	suite.Equal(domain.Posted, v.Status)
	suite.Equal("JV-000001", v.VoucherNo)
	suite.True(suite.balance(cash, "2024-01-31").Equal(amount("500")))
	suite.True(suite.balance(sales, "2024-01-31").Equal(amount("500")))
	suite.True(suite.balance(cash, "2024-01-14").IsZero())

	tb, err := suite.reports.TrialBalance(suite.ctx, companyID, date("2024-01-31"))
	suite.Require().NoError(err)
	suite.True(tb.Balanced)
	suite.True(tb.TotalDebit.Equal(amount("500")))
}

func (suite *LedgerStoreTestSuite) TestUnbalancedVoucher_StaysDraftAndInvisible() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)
	v := suite.draft("2024-01-15", line{account: cash, debit: "500"}, line{account: sales, credit: "400"})

	_, err := suite.vouchers.Post(suite.ctx, companyID, v.VoucherID, userID)

	suite.ErrorIs(err, apperrors.ErrUnbalanced)
	stored, err := suite.vouchers.GetVoucherByID(suite.ctx, companyID, v.VoucherID)
	suite.Require().NoError(err)
	suite.Equal(domain.Draft, stored.Status)
	suite.Len(stored.Entries, 2)
	suite.True(suite.balance(cash, "2024-12-31").IsZero())
	suite.True(suite.balance(sales, "2024-12-31").IsZero())
}

func (suite *LedgerStoreTestSuite) TestControlAccount_RollsUpChildren() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	payables := suite.createAccount("2000", "Payables", domain.Liability, nil, true)
	supplier := suite.createAccount("2001", "Supplier A", domain.Liability, payables, false)

	v := suite.draft("2024-01-10")
	_, err := suite.vouchers.AddEntry(suite.ctx, companyID, v.VoucherID, dto.AddEntryRequest{
		AccountID: payables.AccountID, DebitAmount: decimal.Zero, CreditAmount: amount("200"),
	}, userID)
	suite.ErrorIs(err, apperrors.ErrControlAccountPosting)

	suite.post("2024-01-10", line{account: cash, debit: "200"}, line{account: supplier, credit: "200"})

	total, err := suite.balances.SubtreeBalance(suite.ctx, companyID, payables.AccountID, date("2024-01-31"))
	suite.Require().NoError(err)
	suite.True(total.Equal(amount("200")), "got %s", total)
}

func (suite *LedgerStoreTestSuite) TestProfitAndLoss_SpansMonths() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)
	rent := suite.createAccount("6000", "Rent", domain.Expense, nil, false)

	suite.post("2024-01-20", line{account: cash, debit: "1000"}, line{account: sales, credit: "1000"})
	suite.post("2024-02-05", line{account: rent, debit: "300"}, line{account: cash, credit: "300"})

	pl, err := suite.reports.ProfitAndLoss(suite.ctx, companyID, date("2024-01-01"), date("2024-02-29"))
	suite.Require().NoError(err)
	suite.True(pl.NetProfit.Equal(amount("700")), "got %s", pl.NetProfit)

	bs, err := suite.reports.BalanceSheet(suite.ctx, companyID, date("2024-02-29"))
	suite.Require().NoError(err)
	suite.True(bs.Balanced)
	suite.True(bs.TotalAssets.Equal(amount("700")))
}

func (suite *LedgerStoreTestSuite) TestDeactivatedAccount_RejectsEntries() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	suite.Require().NoError(suite.accounts.DeactivateAccount(suite.ctx, companyID, cash.AccountID, userID))
	v := suite.draft("2024-01-15")

	_, err := suite.vouchers.AddEntry(suite.ctx, companyID, v.VoucherID, dto.AddEntryRequest{
		AccountID: cash.AccountID, DebitAmount: amount("10"), CreditAmount: decimal.Zero,
	}, userID)

	suite.ErrorIs(err, apperrors.ErrInactiveAccount)
}

func (suite *LedgerStoreTestSuite) TestDuplicateCodeRejected() {
	suite.createAccount("1000", "Cash", domain.Asset, nil, false)

	_, err := suite.accounts.CreateAccount(suite.ctx, companyID, dto.CreateAccountRequest{
		Code: "1000", Name: "Petty cash", Nature: domain.Asset,
	}, userID)

	suite.ErrorIs(err, apperrors.ErrDuplicateCode)
}

func (suite *LedgerStoreTestSuite) TestConcurrentPost_AppliesOnce() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)
	v := suite.draft("2024-01-15", line{account: cash, debit: "500"}, line{account: sales, credit: "500"})

	const workers = 8
	results := make([]*domain.Voucher, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = suite.vouchers.Post(context.Background(), companyID, v.VoucherID, userID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		suite.Require().NoError(errs[i])
		suite.Equal(domain.Posted, results[i].Status)
		suite.True(results[0].PostedAt.Equal(*results[i].PostedAt))
	}
	suite.True(suite.balance(cash, "2024-01-31").Equal(amount("500")))
}

func (suite *LedgerStoreTestSuite) TestPostedVoucherIsImmutable() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)
	v := suite.post("2024-01-15", line{account: cash, debit: "500"}, line{account: sales, credit: "500"})

	_, err := suite.vouchers.AddEntry(suite.ctx, companyID, v.VoucherID, dto.AddEntryRequest{
		AccountID: cash.AccountID, DebitAmount: amount("1"), CreditAmount: decimal.Zero,
	}, userID)
	suite.ErrorIs(err, apperrors.ErrVoucherNotDraft)

	err = suite.vouchers.RemoveEntry(suite.ctx, companyID, v.VoucherID, v.Entries[0].EntryID, userID)
	suite.ErrorIs(err, apperrors.ErrVoucherNotDraft)

	err = suite.accounts.DeleteAccount(suite.ctx, companyID, cash.AccountID, userID)
	suite.ErrorIs(err, apperrors.ErrAccountHasPostings)
}

func (suite *LedgerStoreTestSuite) TestReverse_RestoresBalances() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)
	original := suite.post("2024-01-15", line{account: cash, debit: "500"}, line{account: sales, credit: "500"})
	on := "2024-01-20"

	reversal, err := suite.vouchers.Reverse(suite.ctx, companyID, original.VoucherID, dto.ReverseVoucherRequest{VoucherDate: &on}, userID)
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, reversal.Status)
	suite.Require().NotNil(reversal.ReversesVoucherID)
	suite.Equal(original.VoucherID, *reversal.ReversesVoucherID)
	suite.Equal("JV-000002", reversal.VoucherNo)

	suite.True(suite.balance(cash, "2024-01-31").IsZero())
	suite.True(suite.balance(cash, "2024-01-19").Equal(amount("500")))

	_, err = suite.vouchers.Reverse(suite.ctx, companyID, original.VoucherID, dto.ReverseVoucherRequest{VoucherDate: &on}, userID)
	suite.ErrorIs(err, apperrors.ErrAlreadyReversed)
}

func (suite *LedgerStoreTestSuite) TestAccountLedger_RunningBalance() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)
	suite.post("2023-12-30", line{account: cash, debit: "100"}, line{account: sales, credit: "100"})
	suite.post("2024-01-05", line{account: cash, debit: "50"}, line{account: sales, credit: "50"})
	suite.post("2024-01-09", line{account: sales, debit: "30"}, line{account: cash, credit: "30"})

	ledger, err := suite.balances.AccountLedger(suite.ctx, companyID, cash.AccountID, date("2024-01-01"), date("2024-01-31"))

	suite.Require().NoError(err)
	suite.True(ledger.OpeningBalance.Equal(amount("100")))
	suite.Require().Len(ledger.Lines, 2)
	suite.True(ledger.Lines[0].RunningBalance.Equal(amount("150")))
	suite.True(ledger.Lines[1].RunningBalance.Equal(amount("120")))
	suite.True(ledger.ClosingBalance.Equal(amount("120")))
}

func (suite *LedgerStoreTestSuite) TestListVouchers_Paginates() {
	for _, on := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		suite.draft(on)
	}

	first, err := suite.vouchers.ListVouchers(suite.ctx, companyID, dto.ListVouchersParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Vouchers, 2)
	suite.Equal("2024-01-03", first.Vouchers[0].VoucherDate)
	suite.Require().NotNil(first.NextToken)

	second, err := suite.vouchers.ListVouchers(suite.ctx, companyID, dto.ListVouchersParams{Limit: 2, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(second.Vouchers, 1)
	suite.Equal("2024-01-01", second.Vouchers[0].VoucherDate)
	suite.Nil(second.NextToken)
}

// postingBetweenChecks runs interleave once, right after the service has
// asked whether the account has postings and before it writes.
type postingBetweenChecks struct {
	portsrepo.AccountRepositoryFacade
	interleave func()
}

func (r *postingBetweenChecks) HasPostings(ctx context.Context, companyID, accountID string) (bool, error) {
	used, err := r.AccountRepositoryFacade.HasPostings(ctx, companyID, accountID)
	if r.interleave != nil {
		f := r.interleave
		r.interleave = nil
		f()
	}
	return used, err
}

func (suite *LedgerStoreTestSuite) TestNatureChange_LosesToConcurrentPosting() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	sales := suite.createAccount("4000", "Sales", domain.Income, nil, false)

	repo := &postingBetweenChecks{
		AccountRepositoryFacade: suite.store.Repositories().AccountRepo,
		interleave: func() {
			suite.post("2024-01-15", line{account: cash, debit: "500"}, line{account: sales, credit: "500"})
		},
	}
	accounts := services.NewAccountService(repo)

	liability := domain.Liability
	_, err := accounts.UpdateAccount(suite.ctx, companyID, cash.AccountID, dto.UpdateAccountRequest{Nature: &liability}, userID)

	suite.ErrorIs(err, apperrors.ErrNatureLocked)
	reloaded, err := suite.accounts.GetAccountByID(suite.ctx, companyID, cash.AccountID)
	suite.Require().NoError(err)
	suite.Equal(domain.Asset, reloaded.Nature)
	suite.True(suite.balance(cash, "2024-01-31").Equal(amount("500")))
}

func (suite *LedgerStoreTestSuite) TestNatureChange_AllowedWithoutPostings() {
	acc := suite.createAccount("2100", "Accruals", domain.Asset, nil, false)
	liability := domain.Liability

	updated, err := suite.accounts.UpdateAccount(suite.ctx, companyID, acc.AccountID, dto.UpdateAccountRequest{Nature: &liability}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Liability, updated.Nature)
}

func (suite *LedgerStoreTestSuite) TestAmountBeyondScale_Rejected() {
	cash := suite.createAccount("1000", "Cash", domain.Asset, nil, false)
	v := suite.draft("2024-01-15")

	_, err := suite.vouchers.AddEntry(suite.ctx, companyID, v.VoucherID, dto.AddEntryRequest{
		AccountID: cash.AccountID, DebitAmount: amount("0.00001"), CreditAmount: decimal.Zero,
	}, userID)

	suite.ErrorIs(err, apperrors.ErrInvalidLine)
	reloaded, err := suite.vouchers.GetVoucherByID(suite.ctx, companyID, v.VoucherID)
	suite.Require().NoError(err)
	suite.Empty(reloaded.Entries)
}

func (suite *LedgerStoreTestSuite) TestListVouchers_SameInstantNotSkipped() {
	frozen := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	vouchers := services.NewVoucherService(suite.store.Repositories().VoucherRepo,
		services.WithVoucherClock(func() time.Time { return frozen }))

	created := map[string]bool{}
	for i := 0; i < 5; i++ {
		v, err := vouchers.CreateDraft(suite.ctx, companyID, dto.CreateVoucherRequest{
			VoucherType: domain.Journal,
			VoucherDate: "2024-02-01",
		}, userID)
		suite.Require().NoError(err)
		created[v.VoucherID] = true
	}

	seen := map[string]bool{}
	var token *string
	for page := 0; page < 5; page++ {
		resp, err := vouchers.ListVouchers(suite.ctx, companyID, dto.ListVouchersParams{Limit: 2, NextToken: token})
		suite.Require().NoError(err)
		for _, v := range resp.Vouchers {
			suite.False(seen[v.VoucherID], "voucher %s listed twice", v.VoucherID)
			seen[v.VoucherID] = true
		}
		if resp.NextToken == nil {
			break
		}
		token = resp.NextToken
	}

	suite.Equal(created, seen)
}
