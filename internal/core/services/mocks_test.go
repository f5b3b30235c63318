package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, companyID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostings(ctx context.Context, companyID, accountID string) (bool, error) {
	args := m.Called(ctx, companyID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) HasChildren(ctx context.Context, companyID, accountID string) (bool, error) {
	args := m.Called(ctx, companyID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, companyID, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, companyID, accountID string) error {
	args := m.Called(ctx, companyID, accountID)
	return args.Error(0)
}

// --- Mock VoucherRepository ---

// MockVoucherRepository runs WithTx callbacks against Tx. A non-nil error
// configured for WithTx short-circuits the callback.
type MockVoucherRepository struct {
	mock.Mock
	Tx *MockVoucherTx
}

var _ portsrepo.VoucherRepositoryFacade = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchers(ctx context.Context, companyID string, filter domain.VoucherFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	args := m.Called(ctx, companyID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Voucher), returnedNextToken, args.Error(2)
}

func (m *MockVoucherRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.VoucherTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Tx)
}

// --- Mock VoucherTx ---
type MockVoucherTx struct {
	mock.Mock
}

var _ portsrepo.VoucherTx = (*MockVoucherTx)(nil)

func (m *MockVoucherTx) FindVoucherForUpdate(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherTx) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, companyID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockVoucherTx) NextVoucherNumber(ctx context.Context, companyID string, voucherType domain.VoucherType) (int64, error) {
	args := m.Called(ctx, companyID, voucherType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVoucherTx) InsertVoucher(ctx context.Context, voucher domain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherTx) UpdateVoucherHeader(ctx context.Context, voucher domain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherTx) InsertEntry(ctx context.Context, entry domain.VoucherEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockVoucherTx) DeleteEntry(ctx context.Context, voucherID, entryID string) (bool, error) {
	args := m.Called(ctx, voucherID, entryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoucherTx) MarkPosted(ctx context.Context, voucher domain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherTx) FindReversal(ctx context.Context, companyID, originalID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, originalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

// --- Mock LedgerReader ---
type MockLedgerReader struct {
	mock.Mock
}

var _ portsrepo.LedgerReader = (*MockLedgerReader)(nil)

func (m *MockLedgerReader) LoadSnapshot(ctx context.Context, companyID string, from *time.Time, to time.Time) (*domain.LedgerSnapshot, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSnapshot), args.Error(1)
}

func (m *MockLedgerReader) PostedTotals(ctx context.Context, companyID string, accountIDs []string, cutoff time.Time) (map[string]domain.PostingTotals, error) {
	args := m.Called(ctx, companyID, accountIDs, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PostingTotals), args.Error(1)
}

func (m *MockLedgerReader) LoadAccountActivity(ctx context.Context, companyID, accountID string, from, to time.Time) (domain.PostingTotals, []domain.PostedEntry, error) {
	args := m.Called(ctx, companyID, accountID, from, to)
	var entries []domain.PostedEntry
	if args.Get(1) != nil {
		entries = args.Get(1).([]domain.PostedEntry)
	}
	return args.Get(0).(domain.PostingTotals), entries, args.Error(2)
}
