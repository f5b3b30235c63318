package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID resolves an account; NotFound when missing or owned by another company.
	GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error)

	// GetAccountByCode resolves an account by its human code.
	GetAccountByCode(ctx context.Context, companyID string, code string) (*domain.Account, error)

	// ListAccounts lists the chart of accounts ordered by code.
	ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error)

	// GetAccountTree returns the chart of accounts as a hierarchy.
	GetAccountTree(ctx context.Context, companyID string, includeInactive bool) ([]*domain.AccountNode, error)

	// HasPostings reports whether any voucher entry references the account.
	HasPostings(ctx context.Context, companyID string, accountID string) (bool, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount registers a new account.
	CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates name, nature, parent or classification.
	UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. It never deletes.
	DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error

	// DeleteAccount removes an account that nothing references.
	DeleteAccount(ctx context.Context, companyID string, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
