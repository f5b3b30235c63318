package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/models"
	"github.com/SscSPs/gl_engine/internal/utils/mapping"
)

const accountColumns = `account_id, company_id, code, name, nature, parent_account_id, is_control,
	opening_balance, classification, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.CompanyID,
		&m.Code,
		&m.Name,
		&m.Nature,
		&m.ParentAccountID,
		&m.IsControl,
		&m.OpeningBalance,
		&m.Classification,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	var accounts []models.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan account row")
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating account rows")
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`

	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.CompanyID,
		m.Code,
		m.Name,
		m.Nature,
		m.ParentAccountID,
		m.IsControl,
		m.OpeningBalance,
		m.Classification,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to save account %s", m.AccountID))
	}
	return nil
}

// FindAccountByID retrieves an account by its ID within a company.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND account_id = $2;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, companyID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + accountID)
		}
		return nil, mapPgError(err, "failed to find account")
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountByCode retrieves an account by its code within a company.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND code = $2;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account code " + code)
		}
		return nil, mapPgError(err, "failed to find account by code")
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	return findAccountsByIDs(ctx, r.Pool, companyID, accountIDs, "")
}

// findAccountsByIDs is shared with the voucher unit of work, which passes
// a locking clause so concurrent deactivation waits for the posting.
func findAccountsByIDs(ctx context.Context, q querier, companyID string, accountIDs []string, lock string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND account_id = ANY($2) ` + lock + `;`
	rows, err := q.Query(ctx, query, companyID, accountIDs)
	if err != nil {
		return nil, mapPgError(err, "failed to query accounts by IDs")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.AccountID] = a
	}
	return result, nil
}

// ListAccounts retrieves the chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error) {
	return listAccounts(ctx, r.Pool, companyID, includeInactive)
}

func listAccounts(ctx context.Context, q querier, companyID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE company_id = $1 AND ($2 OR is_active)
		ORDER BY code;`
	rows, err := q.Query(ctx, query, companyID, includeInactive)
	if err != nil {
		return nil, mapPgError(err, "failed to list accounts")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// HasPostings reports whether any entry, draft or posted, references the account.
func (r *PgxAccountRepository) HasPostings(ctx context.Context, companyID, accountID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM voucher_entries e
		JOIN vouchers v ON v.voucher_id = e.voucher_id
		WHERE v.company_id = $1 AND e.account_id = $2
	);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, companyID, accountID).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check account postings")
	}
	return exists, nil
}

// HasChildren reports whether any account names this one as parent.
func (r *PgxAccountRepository) HasChildren(ctx context.Context, companyID, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE company_id = $1 AND parent_account_id = $2);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, companyID, accountID).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check child accounts")
	}
	return exists, nil
}

// UpdateAccount updates an existing account's mutable details. The row is
// locked first, so a nature change and the check for referencing entries
// cannot interleave with a posting against the account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	tx, err := r.Begin(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var nature string
	err = tx.QueryRow(ctx, `SELECT nature FROM accounts WHERE company_id = $1 AND account_id = $2 FOR UPDATE;`,
		m.CompanyID, m.AccountID).Scan(&nature)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("account " + m.AccountID)
		}
		return mapPgError(err, "failed to lock account")
	}

	if nature != m.Nature {
		var used bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM voucher_entries WHERE account_id = $1);`, m.AccountID).Scan(&used)
		if err != nil {
			return mapPgError(err, "failed to check account postings")
		}
		if used {
			return fmt.Errorf("%w: account %s", apperrors.ErrNatureLocked, m.Code)
		}
	}

	query := `
		UPDATE accounts
		SET name = $3, nature = $4, parent_account_id = $5, classification = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE company_id = $1 AND account_id = $2;`

	_, err = tx.Exec(ctx, query,
		m.CompanyID,
		m.AccountID,
		m.Name,
		m.Nature,
		m.ParentAccountID,
		m.Classification,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to update account %s", m.AccountID))
	}
	return r.Commit(ctx, tx)
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, companyID, accountID, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1 AND account_id = $2;`

	cmdTag, err := r.Pool.Exec(ctx, query, companyID, accountID, now, userID)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to deactivate account %s", accountID))
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID)
	}
	return nil
}

// DeleteAccount removes an unreferenced account. A reference that appears
// after the caller's check surfaces as a foreign key conflict.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, companyID, accountID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE company_id = $1 AND account_id = $2;`, companyID, accountID)
	if err != nil {
		mapped := mapPgError(err, "failed to delete account")
		if errors.Is(mapped, apperrors.ErrConflict) {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountHasPostings, accountID)
		}
		return mapped
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID)
	}
	return nil
}
