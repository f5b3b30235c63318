package handlers_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByCode(ctx context.Context, companyID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountTree(ctx context.Context, companyID string, includeInactive bool) ([]*domain.AccountNode, error) {
	args := m.Called(ctx, companyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountNode), args.Error(1)
}
func (m *MockAccountService) HasPostings(ctx context.Context, companyID string, accountID string) (bool, error) {
	args := m.Called(ctx, companyID, accountID)
	return args.Bool(0), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	args := m.Called(ctx, companyID, accountID, userID)
	return args.Error(0)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	args := m.Called(ctx, companyID, accountID, userID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) BalanceAsOf(ctx context.Context, companyID string, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) SubtreeBalance(ctx context.Context, companyID string, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) AccountLedger(ctx context.Context, companyID string, accountID string, from, to time.Time) (*domain.AccountLedger, error) {
	args := m.Called(ctx, companyID, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountLedger), args.Error(1)
}

var _ portssvc.BalanceSvc = (*MockBalanceService)(nil)

// --- Mock VoucherService ---
type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) GetVoucherByID(ctx context.Context, companyID string, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}
func (m *MockVoucherService) ListVouchers(ctx context.Context, companyID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	args := m.Called(ctx, companyID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListVouchersResponse), args.Error(1)
}
func (m *MockVoucherService) CreateDraft(ctx context.Context, companyID string, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}
func (m *MockVoucherService) UpdateDraft(ctx context.Context, companyID string, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, voucherID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}
func (m *MockVoucherService) AddEntry(ctx context.Context, companyID string, voucherID string, req dto.AddEntryRequest, userID string) (*domain.VoucherEntry, error) {
	args := m.Called(ctx, companyID, voucherID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoucherEntry), args.Error(1)
}
func (m *MockVoucherService) RemoveEntry(ctx context.Context, companyID string, voucherID string, entryID string, userID string) error {
	args := m.Called(ctx, companyID, voucherID, entryID, userID)
	return args.Error(0)
}
func (m *MockVoucherService) Post(ctx context.Context, companyID string, voucherID string, actorID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, voucherID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}
func (m *MockVoucherService) Reverse(ctx context.Context, companyID string, voucherID string, req dto.ReverseVoucherRequest, actorID string) (*domain.Voucher, error) {
	args := m.Called(ctx, companyID, voucherID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

var _ portssvc.VoucherSvcFacade = (*MockVoucherService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, companyID string, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, companyID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockReportingService) ProfitAndLoss(ctx context.Context, companyID string, from, to time.Time) (*domain.ProfitAndLoss, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitAndLoss), args.Error(1)
}
func (m *MockReportingService) BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*domain.BalanceSheet, error) {
	args := m.Called(ctx, companyID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
