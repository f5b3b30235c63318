package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/models"
	"github.com/SscSPs/gl_engine/internal/utils/mapping"
)

const accountColumns = `account_id, company_id, code, name, nature, parent_account_id, is_control,
	opening_balance, classification, is_active, created_at, created_by, last_updated_at, last_updated_by`

type accountRepository struct {
	store *Store
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func scanAccount(row rowScanner) (models.Account, error) {
	var m models.Account
	var createdAt, updatedAt string
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
		&createdAt,
		&m.CreatedBy,
		&updatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(updatedAt)
	return m, err
}

func collectAccounts(rows *sql.Rows) ([]domain.Account, error) {
	defer rows.Close()
	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, mapSQLiteError(err, "failed to scan account row")
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, "error iterating account rows")
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.store.writer.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AccountID,
		m.CompanyID,
		m.Code,
		m.Name,
		m.Nature,
		m.ParentAccountID,
		boolToInt(m.IsControl),
		m.OpeningBalance.String(),
		m.Classification,
		boolToInt(m.IsActive),
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("failed to save account %s", m.AccountID))
	}
	return nil
}

func (r *accountRepository) findOne(ctx context.Context, what, column, value, companyID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = ? AND ` + column + ` = ?`
	m, err := scanAccount(r.store.reader.QueryRowContext(ctx, query, companyID, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(what + " " + value)
		}
		return nil, mapSQLiteError(err, "failed to find "+what)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

func (r *accountRepository) FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account", "account_id", accountID, companyID)
}

func (r *accountRepository) FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	return r.findOne(ctx, "account code", "code", code, companyID)
}

func (r *accountRepository) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	return findAccountsByIDs(ctx, r.store.reader, companyID, accountIDs)
}

func findAccountsByIDs(ctx context.Context, q querier, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	args := []any{companyID}
	for _, id := range accountIDs {
		args = append(args, id)
	}
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE company_id = ? AND account_id IN (` + placeholders(len(accountIDs)) + `)`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err, "failed to query accounts by IDs")
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

func (r *accountRepository) ListAccounts(ctx context.Context, companyID string, includeInactive bool) ([]domain.Account, error) {
	return listAccounts(ctx, r.store.reader, companyID, includeInactive)
}

func listAccounts(ctx context.Context, q querier, companyID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE company_id = ? AND (? OR is_active = 1)
		ORDER BY code`
	rows, err := q.QueryContext(ctx, query, companyID, boolToInt(includeInactive))
	if err != nil {
		return nil, mapSQLiteError(err, "failed to list accounts")
	}
	return collectAccounts(rows)
}

func (r *accountRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := r.store.reader.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, mapSQLiteError(err, "failed to check account references")
	}
	return exists, nil
}

// HasPostings counts draft and posted lines alike.
func (r *accountRepository) HasPostings(ctx context.Context, companyID, accountID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM voucher_entries e
		JOIN vouchers v ON v.voucher_id = e.voucher_id
		WHERE v.company_id = ? AND e.account_id = ?
	)`, companyID, accountID)
}

func (r *accountRepository) HasChildren(ctx context.Context, companyID, accountID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE company_id = ? AND parent_account_id = ?)`,
		companyID, accountID)
}

func (r *accountRepository) affectOne(ctx context.Context, accountID, msg, query string, args ...any) error {
	res, err := r.store.writer.ExecContext(ctx, query, args...)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("%s %s", msg, accountID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapSQLiteError(err, msg)
	}
	if n == 0 {
		return apperrors.NewNotFoundError("account " + accountID)
	}
	return nil
}

// UpdateAccount runs as one statement on the writer connection, so the
// guard against changing the nature of a referenced account cannot race a
// posting.
func (r *accountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	res, err := r.store.writer.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, nature = ?, parent_account_id = ?, classification = ?,
			last_updated_at = ?, last_updated_by = ?
		WHERE company_id = ? AND account_id = ?
			AND (nature = ? OR NOT EXISTS (SELECT 1 FROM voucher_entries WHERE account_id = accounts.account_id))`,
		m.Name, m.Nature, m.ParentAccountID, m.Classification,
		formatTime(m.LastUpdatedAt), m.LastUpdatedBy, m.CompanyID, m.AccountID, m.Nature)
	if err != nil {
		return mapSQLiteError(err, "failed to update account "+m.AccountID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapSQLiteError(err, "failed to update account")
	}
	if n > 0 {
		return nil
	}

	var exists bool
	err = r.store.writer.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE company_id = ? AND account_id = ?)`,
		m.CompanyID, m.AccountID).Scan(&exists)
	if err != nil {
		return mapSQLiteError(err, "failed to find account")
	}
	if !exists {
		return apperrors.NewNotFoundError("account " + m.AccountID)
	}
	return fmt.Errorf("%w: account %s", apperrors.ErrNatureLocked, m.Code)
}

func (r *accountRepository) DeactivateAccount(ctx context.Context, companyID, accountID, userID string, now time.Time) error {
	return r.affectOne(ctx, accountID, "failed to deactivate account", `
		UPDATE accounts SET is_active = 0, last_updated_at = ?, last_updated_by = ?
		WHERE company_id = ? AND account_id = ?`,
		formatTime(now), userID, companyID, accountID)
}

func (r *accountRepository) DeleteAccount(ctx context.Context, companyID, accountID string) error {
	err := r.affectOne(ctx, accountID, "failed to delete account",
		`DELETE FROM accounts WHERE company_id = ? AND account_id = ?`, companyID, accountID)
	if errors.Is(err, apperrors.ErrConflict) {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountHasPostings, accountID)
	}
	return err
}
