package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
)

const (
	testCompanyID = "co_1"
	testUserID    = "user_1"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func testAccount(id, code, name string, nature domain.AccountNature) *domain.Account {
	return &domain.Account{
		AccountID:      id,
		CompanyID:      testCompanyID,
		Code:           code,
		Name:           name,
		Nature:         nature,
		OpeningBalance: decimal.Zero,
		IsActive:       true,
	}
}

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo, services.WithAccountClock(func() time.Time { return fixedNow }))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:           " 1000 ",
		Name:           "Cash",
		Nature:         "asset",
		OpeningBalance: decimal.NewFromInt(250),
	}

	suite.mockRepo.On("FindAccountByCode", ctx, testCompanyID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "1000" && a.Nature == domain.Asset && a.IsActive && a.CompanyID == testCompanyID
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, testCompanyID, req, testUserID)

	suite.Require().NoError(err)
	suite.NotEmpty(account.AccountID)
	suite.Equal("1000", account.Code)
	suite.True(account.OpeningBalance.Equal(decimal.NewFromInt(250)))
	suite.Equal(testUserID, account.CreatedBy)
	suite.Equal(fixedNow, account.CreatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash again", Nature: domain.Asset}

	suite.mockRepo.On("FindAccountByCode", ctx, testCompanyID, "1000").
		Return(testAccount("acc_cash", "1000", "Cash", domain.Asset), nil).Once()

	account, err := suite.service.CreateAccount(ctx, testCompanyID, req, testUserID)

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicateCode)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_StoreReportsDuplicate() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", Nature: domain.Asset}

	suite.mockRepo.On("FindAccountByCode", ctx, testCompanyID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicateCode).Once()

	_, err := suite.service.CreateAccount(ctx, testCompanyID, req, testUserID)
	suite.ErrorIs(err, apperrors.ErrDuplicateCode)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentMustExistInCompany() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "2001", Name: "Trade payables", Nature: domain.Liability, ParentAccountID: strPtr("acc_other")}

	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_other").Return(nil, apperrors.NewNotFoundError("account")).Once()

	_, err := suite.service.CreateAccount(ctx, testCompanyID, req, testUserID)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ControlNeedsZeroOpening() {
	req := dto.CreateAccountRequest{Code: "2000", Name: "Payables", Nature: domain.Liability, IsControl: true, OpeningBalance: decimal.NewFromInt(1)}

	_, err := suite.service.CreateAccount(context.Background(), testCompanyID, req, testUserID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownClassification() {
	req := dto.CreateAccountRequest{Code: "1500", Name: "Plant", Nature: domain.Asset, Classification: "FIXED"}

	_, err := suite.service.CreateAccount(context.Background(), testCompanyID, req, testUserID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "missing").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.GetAccountByID(ctx, testCompanyID, "missing")
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NatureLockedOncePosted() {
	ctx := context.Background()
	nature := domain.Expense
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_cash").
		Return(testAccount("acc_cash", "1000", "Cash", domain.Asset), nil).Once()
	suite.mockRepo.On("HasPostings", ctx, testCompanyID, "acc_cash").Return(true, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, testCompanyID, "acc_cash", dto.UpdateAccountRequest{Nature: &nature}, testUserID)

	suite.ErrorIs(err, apperrors.ErrNatureLocked)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenameAndReclassify() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_loan").
		Return(testAccount("acc_loan", "2500", "Loan", domain.Liability), nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == "Bank loan" && a.Classification == domain.NonCurrent && a.LastUpdatedBy == testUserID
	})).Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, testCompanyID, "acc_loan", dto.UpdateAccountRequest{
		Name:           strPtr("Bank loan"),
		Classification: strPtr("non_current"),
	}, testUserID)

	suite.Require().NoError(err)
	suite.Equal(fixedNow, account.LastUpdatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RejectsCycle() {
	ctx := context.Background()
	parent := testAccount("acc_parent", "2000", "Payables", domain.Liability)
	child := testAccount("acc_child", "2001", "Trade payables", domain.Liability)
	child.ParentAccountID = strPtr("acc_parent")

	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_parent").Return(parent, nil).Once()
	suite.mockRepo.On("ListAccounts", ctx, testCompanyID, true).Return([]domain.Account{*parent, *child}, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, testCompanyID, "acc_parent", dto.UpdateAccountRequest{ParentAccountID: strPtr("acc_child")}, testUserID)

	suite.ErrorIs(err, apperrors.ErrInvalidParent)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_cash").
		Return(testAccount("acc_cash", "1000", "Cash", domain.Asset), nil).Once()
	suite.mockRepo.On("DeactivateAccount", ctx, testCompanyID, "acc_cash", testUserID, fixedNow).Return(nil).Once()

	suite.Require().NoError(suite.service.DeactivateAccount(ctx, testCompanyID, "acc_cash", testUserID))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	inactive := testAccount("acc_cash", "1000", "Cash", domain.Asset)
	inactive.IsActive = false
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_cash").Return(inactive, nil).Once()

	suite.NoError(suite.service.DeactivateAccount(ctx, testCompanyID, "acc_cash", testUserID))
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_RefusedWithPostings() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_cash").
		Return(testAccount("acc_cash", "1000", "Cash", domain.Asset), nil).Once()
	suite.mockRepo.On("HasPostings", ctx, testCompanyID, "acc_cash").Return(true, nil).Once()

	err := suite.service.DeleteAccount(ctx, testCompanyID, "acc_cash", testUserID)

	suite.ErrorIs(err, apperrors.ErrAccountHasPostings)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_Unused() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, testCompanyID, "acc_misc").
		Return(testAccount("acc_misc", "6999", "Misc", domain.Expense), nil).Once()
	suite.mockRepo.On("HasPostings", ctx, testCompanyID, "acc_misc").Return(false, nil).Once()
	suite.mockRepo.On("HasChildren", ctx, testCompanyID, "acc_misc").Return(false, nil).Once()
	suite.mockRepo.On("DeleteAccount", ctx, testCompanyID, "acc_misc").Return(nil).Once()

	suite.NoError(suite.service.DeleteAccount(ctx, testCompanyID, "acc_misc", testUserID))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountTree() {
	ctx := context.Background()
	parent := testAccount("acc_parent", "2000", "Payables", domain.Liability)
	parent.IsControl = true
	child := testAccount("acc_child", "2001", "Trade payables", domain.Liability)
	child.ParentAccountID = strPtr("acc_parent")
	suite.mockRepo.On("ListAccounts", ctx, testCompanyID, false).Return([]domain.Account{*child, *parent}, nil).Once()

	tree, err := suite.service.GetAccountTree(ctx, testCompanyID, false)

	suite.Require().NoError(err)
	suite.Require().Len(tree, 1)
	suite.Equal("2000", tree[0].Code)
	suite.Require().Len(tree[0].Children, 1)
	suite.Equal("2001", tree[0].Children[0].Code)
}
