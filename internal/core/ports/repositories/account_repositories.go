package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	// Accounts of other companies are reported as not found.
	FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its human code within a company.
	FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are omitted.
	FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the chart of accounts ordered by code.
	ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error)

	// HasPostings reports whether any voucher entry references the account.
	HasPostings(ctx context.Context, companyID, accountID string) (bool, error)

	// HasChildren reports whether any account names this one as parent.
	HasChildren(ctx context.Context, companyID, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A code clash yields apperrors.ErrDuplicateCode.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details. A nature
	// change on an account that any entry references fails with
	// apperrors.ErrNatureLocked; the check and the write are atomic.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, companyID, accountID string, userID string, now time.Time) error

	// DeleteAccount removes an unreferenced account.
	DeleteAccount(ctx context.Context, companyID, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
