package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/models"
	"github.com/SscSPs/gl_engine/internal/utils/mapping"
	"github.com/SscSPs/gl_engine/internal/utils/pagination"
)

const voucherColumns = `voucher_id, company_id, voucher_no, voucher_type, voucher_date, status,
	total_debit, total_credit, narration, posted_by, posted_at, reverses_voucher_id,
	created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `entry_id, voucher_id, account_id, debit_amount, credit_amount, narration, line_no,
	created_at, created_by, last_updated_at, last_updated_by`

type voucherRepository struct {
	store *Store
}

var _ portsrepo.VoucherRepositoryFacade = (*voucherRepository)(nil)

func scanVoucher(row rowScanner) (models.Voucher, error) {
	var m models.Voucher
	var voucherDate, createdAt, updatedAt string
	var postedAt sql.NullString
	err := row.Scan(
		&m.VoucherID,
		&m.CompanyID,
		&m.VoucherNo,
		&m.VoucherType,
		&voucherDate,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Narration,
		&m.PostedBy,
		&postedAt,
		&m.ReversesVoucherID,
		&createdAt,
		&m.CreatedBy,
		&updatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if m.VoucherDate, err = parseDate(voucherDate); err != nil {
		return m, err
	}
	if postedAt.Valid {
		t, err := parseTime(postedAt.String)
		if err != nil {
			return m, err
		}
		m.PostedAt = &t
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(updatedAt)
	return m, err
}

// scanEntry reads entryColumns followed by any extra destinations.
func scanEntry(row rowScanner, extra ...any) (models.VoucherEntry, error) {
	var m models.VoucherEntry
	var createdAt, updatedAt string
	dest := []any{
		&m.EntryID,
		&m.VoucherID,
		&m.AccountID,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.Narration,
		&m.LineNo,
		&createdAt,
		&m.CreatedBy,
		&updatedAt,
		&m.LastUpdatedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return m, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(updatedAt)
	return m, err
}

func findVoucher(ctx context.Context, q querier, companyID, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id = ? AND voucher_id = ?`
	m, err := scanVoucher(q.QueryRowContext(ctx, query, companyID, voucherID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("voucher " + voucherID)
		}
		return nil, mapSQLiteError(err, "failed to find voucher")
	}

	rows, err := q.QueryContext(ctx, `SELECT `+entryColumns+` FROM voucher_entries WHERE voucher_id = ? ORDER BY line_no`, voucherID)
	if err != nil {
		return nil, mapSQLiteError(err, "failed to query voucher entries")
	}
	defer rows.Close()

	var entries []models.VoucherEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, mapSQLiteError(err, "failed to scan voucher entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, "error iterating voucher entries")
	}

	voucher := mapping.ToDomainVoucher(m)
	voucher.Entries = mapping.ToDomainVoucherEntrySlice(entries)
	return &voucher, nil
}

func (r *voucherRepository) FindVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	var voucher *domain.Voucher
	err := r.store.readSnapshot(ctx, func(tx *sql.Tx) error {
		var err error
		voucher, err = findVoucher(ctx, tx, companyID, voucherID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

func (r *voucherRepository) ListVouchers(ctx context.Context, companyID string, filter domain.VoucherFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	conditions := []string{"company_id = ?"}
	args := []any{companyID}

	if filter.Type != nil {
		conditions = append(conditions, "voucher_type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.FromDate != nil {
		conditions = append(conditions, "voucher_date >= ?")
		args = append(args, formatDate(*filter.FromDate))
	}
	if filter.ToDate != nil {
		conditions = append(conditions, "voucher_date <= ?")
		args = append(args, formatDate(*filter.ToDate))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		conditions = append(conditions, "(voucher_date, created_at, voucher_id) < (?, ?, ?)")
		args = append(args, formatDate(cursor.VoucherDate), formatTime(cursor.CreatedAt), cursor.VoucherID)
	}
	args = append(args, limit+1)

	query := `SELECT ` + voucherColumns + ` FROM vouchers
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY voucher_date DESC, created_at DESC, voucher_id DESC
		LIMIT ?`

	rows, err := r.store.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, mapSQLiteError(err, "failed to list vouchers")
	}
	defer rows.Close()

	vouchers := make([]domain.Voucher, 0, limit)
	for rows.Next() {
		m, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, mapSQLiteError(err, "failed to scan voucher row")
		}
		vouchers = append(vouchers, mapping.ToDomainVoucher(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapSQLiteError(err, "error iterating voucher rows")
	}

	var next *string
	if len(vouchers) > limit {
		vouchers = vouchers[:limit]
		last := vouchers[len(vouchers)-1]
		token := pagination.EncodeToken(pagination.Cursor{
			VoucherDate: last.VoucherDate,
			CreatedAt:   last.CreatedAt,
			VoucherID:   last.VoucherID,
		})
		next = &token
	}
	return vouchers, next, nil
}

// WithTx runs fn on the single writer connection. The transaction begins
// IMMEDIATE, so it holds the database write lock from the first statement
// and a concurrent unit of work waits for it to finish.
func (r *voucherRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.VoucherTx) error) error {
	tx, err := r.store.writer.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqliteVoucherTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapSQLiteError(err, "failed to commit transaction")
	}
	return nil
}

type sqliteVoucherTx struct {
	tx *sql.Tx
}

var _ portsrepo.VoucherTx = (*sqliteVoucherTx)(nil)

func (t *sqliteVoucherTx) FindVoucherForUpdate(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	return findVoucher(ctx, t.tx, companyID, voucherID)
}

func (t *sqliteVoucherTx) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	return findAccountsByIDs(ctx, t.tx, companyID, accountIDs)
}

func (t *sqliteVoucherTx) NextVoucherNumber(ctx context.Context, companyID string, voucherType domain.VoucherType) (int64, error) {
	var n int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO voucher_sequences (company_id, voucher_type, last_value)
		VALUES (?, ?, 1)
		ON CONFLICT (company_id, voucher_type)
		DO UPDATE SET last_value = last_value + 1
		RETURNING last_value`, companyID, string(voucherType)).Scan(&n)
	if err != nil {
		return 0, mapSQLiteError(err, "failed to reserve voucher number")
	}
	return n, nil
}

func (t *sqliteVoucherTx) InsertVoucher(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO vouchers (`+voucherColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.VoucherID,
		m.CompanyID,
		m.VoucherNo,
		m.VoucherType,
		formatDate(m.VoucherDate),
		m.Status,
		m.TotalDebit.String(),
		m.TotalCredit.String(),
		m.Narration,
		m.PostedBy,
		nullableTime(m.PostedAt),
		m.ReversesVoucherID,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("failed to insert voucher %s", m.VoucherID))
	}
	return nil
}

// execDraft runs an update guarded by status = 'DRAFT'.
func (t *sqliteVoucherTx) execDraft(ctx context.Context, voucherNo, msg, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return mapSQLiteError(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapSQLiteError(err, msg)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrVoucherNotDraft, voucherNo)
	}
	return nil
}

func (t *sqliteVoucherTx) UpdateVoucherHeader(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	return t.execDraft(ctx, m.VoucherNo, "failed to update voucher "+m.VoucherID, `
		UPDATE vouchers
		SET voucher_date = ?, narration = ?, total_debit = ?, total_credit = ?,
			last_updated_at = ?, last_updated_by = ?
		WHERE voucher_id = ? AND status = 'DRAFT'`,
		formatDate(m.VoucherDate), m.Narration, m.TotalDebit.String(), m.TotalCredit.String(),
		formatTime(m.LastUpdatedAt), m.LastUpdatedBy, m.VoucherID)
}

func (t *sqliteVoucherTx) InsertEntry(ctx context.Context, entry domain.VoucherEntry) error {
	m := mapping.ToModelVoucherEntry(entry)
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO voucher_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.EntryID,
		m.VoucherID,
		m.AccountID,
		m.DebitAmount.String(),
		m.CreditAmount.String(),
		m.Narration,
		m.LineNo,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("failed to insert voucher entry %s", m.EntryID))
	}
	return nil
}

func (t *sqliteVoucherTx) DeleteEntry(ctx context.Context, voucherID, entryID string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM voucher_entries WHERE voucher_id = ? AND entry_id = ?`, voucherID, entryID)
	if err != nil {
		return false, mapSQLiteError(err, "failed to delete voucher entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapSQLiteError(err, "failed to delete voucher entry")
	}
	return n > 0, nil
}

func (t *sqliteVoucherTx) MarkPosted(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	return t.execDraft(ctx, m.VoucherNo, "failed to post voucher "+m.VoucherID, `
		UPDATE vouchers
		SET status = 'POSTED', total_debit = ?, total_credit = ?, posted_by = ?, posted_at = ?,
			last_updated_at = ?, last_updated_by = ?
		WHERE voucher_id = ? AND status = 'DRAFT'`,
		m.TotalDebit.String(), m.TotalCredit.String(), m.PostedBy, nullableTime(m.PostedAt),
		formatTime(m.LastUpdatedAt), m.LastUpdatedBy, m.VoucherID)
}

func (t *sqliteVoucherTx) FindReversal(ctx context.Context, companyID, originalID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id = ? AND reverses_voucher_id = ?`
	m, err := scanVoucher(t.tx.QueryRowContext(ctx, query, companyID, originalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapSQLiteError(err, "failed to find reversal")
	}
	voucher := mapping.ToDomainVoucher(m)
	return &voucher, nil
}
