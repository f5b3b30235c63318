package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/utils/accounting"
)

// accountService maintains a company's chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the clock used for audit timestamps.
func WithAccountClock(clock func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.clock = clock
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{accountRepo: repo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account in the company's chart.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	nature, err := domain.ParseNature(string(req.Nature))
	if err != nil {
		return nil, err
	}
	classification, err := domain.ParseClassification(req.Classification)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		CompanyID:      companyID,
		Code:           strings.TrimSpace(req.Code),
		Name:           strings.TrimSpace(req.Name),
		Nature:         nature,
		IsControl:      req.IsControl,
		OpeningBalance: req.OpeningBalance,
		Classification: classification,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID := *req.ParentAccountID
		account.ParentAccountID = &parentID
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if account.ParentAccountID != nil {
		if err := s.requireParent(ctx, companyID, *account.ParentAccountID); err != nil {
			return nil, err
		}
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, companyID, account.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code", slog.String("company_id", companyID), slog.String("code", account.Code))
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, account.Code)
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("nature", string(account.Nature)))
	return &account, nil
}

// requireParent checks that parentID names an account of the same company.
func (s *accountService) requireParent(ctx context.Context, companyID, parentID string) error {
	if _, err := s.accountRepo.FindAccountByID(ctx, companyID, parentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidParent, parentID)
		}
		return err
	}
	return nil
}

// GetAccountByID retrieves an account scoped to the company.
func (s *accountService) GetAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its code.
func (s *accountService) GetAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, companyID, strings.TrimSpace(code))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts lists the company's chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("company_id", companyID))
		return nil, err
	}
	return accounts, nil
}

// GetAccountTree returns the chart of accounts as a hierarchy.
func (s *accountService) GetAccountTree(ctx context.Context, companyID string, includeInactive bool) ([]*domain.AccountNode, error) {
	accounts, err := s.ListAccounts(ctx, companyID, includeInactive)
	if err != nil {
		return nil, err
	}
	return accounting.BuildAccountTree(accounts), nil
}

// HasPostings reports whether any entry references the account.
func (s *accountService) HasPostings(ctx context.Context, companyID, accountID string) (bool, error) {
	if _, err := s.GetAccountByID(ctx, companyID, accountID); err != nil {
		return false, err
	}
	return s.accountRepo.HasPostings(ctx, companyID, accountID)
}

// UpdateAccount updates the mutable attributes of an account. Code and
// opening balance never change after creation.
func (s *accountService) UpdateAccount(ctx context.Context, companyID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}

	if req.Nature != nil {
		nature, err := domain.ParseNature(string(*req.Nature))
		if err != nil {
			return nil, err
		}
		if nature != account.Nature {
			used, err := s.accountRepo.HasPostings(ctx, companyID, accountID)
			if err != nil {
				s.LogError(ctx, err, "Failed to check account postings", slog.String("account_id", accountID))
				return nil, err
			}
			if used {
				return nil, fmt.Errorf("%w: account %s", apperrors.ErrNatureLocked, account.Code)
			}
			account.Nature = nature
		}
	}

	if req.Classification != nil {
		classification, err := domain.ParseClassification(*req.Classification)
		if err != nil {
			return nil, err
		}
		account.Classification = classification
	}

	switch {
	case req.ClearParent:
		account.ParentAccountID = nil
	case req.ParentAccountID != nil && *req.ParentAccountID != "":
		parentID := *req.ParentAccountID
		if err := s.checkReparent(ctx, companyID, accountID, parentID); err != nil {
			return nil, err
		}
		account.ParentAccountID = &parentID
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	account.LastUpdatedAt = s.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		if errors.Is(err, apperrors.ErrNatureLocked) {
			s.LogWarn(ctx, "Account nature locked by a concurrent posting", slog.String("account_id", accountID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

// checkReparent rejects parents outside the company and moves that would
// put an account underneath its own subtree.
func (s *accountService) checkReparent(ctx context.Context, companyID, accountID, parentID string) error {
	if parentID == accountID {
		return fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrInvalidParent)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, true)
	if err != nil {
		return err
	}
	parents := make(map[string]*string, len(accounts))
	for _, a := range accounts {
		parents[a.AccountID] = a.ParentAccountID
	}
	if _, ok := parents[parentID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidParent, parentID)
	}
	for cur, hops := &parentID, 0; cur != nil && hops <= len(accounts); hops++ {
		if *cur == accountID {
			return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrInvalidParent, parentID, accountID)
		}
		cur = parents[*cur]
	}
	return nil
}

// DeactivateAccount hides an account from new postings. History is kept.
func (s *accountService) DeactivateAccount(ctx context.Context, companyID, accountID, userID string) error {
	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		s.LogDebug(ctx, "Account already inactive", slog.String("account_id", accountID))
		return nil
	}

	if err := s.accountRepo.DeactivateAccount(ctx, companyID, accountID, userID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID), slog.String("code", account.Code))
	return nil
}

// DeleteAccount removes an account that has neither entries nor children.
func (s *accountService) DeleteAccount(ctx context.Context, companyID, accountID, userID string) error {
	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return err
	}

	used, err := s.accountRepo.HasPostings(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountHasPostings, account.Code)
	}

	hasChildren, err := s.accountRepo.HasChildren(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	if hasChildren {
		return fmt.Errorf("%w: account %s has child accounts", apperrors.ErrConflict, account.Code)
	}

	if err := s.accountRepo.DeleteAccount(ctx, companyID, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deleted",
		slog.String("account_id", accountID),
		slog.String("code", account.Code),
		slog.String("deleted_by", userID))
	return nil
}
