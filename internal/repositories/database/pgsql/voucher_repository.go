package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

type PgxVoucherRepository struct {
	BaseRepository
}

// newPgxVoucherRepository creates a new repository for vouchers and their entries.
func newPgxVoucherRepository(pool *pgxpool.Pool) *PgxVoucherRepository {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

func scanVoucher(row pgx.Row) (models.Voucher, error) {
	var m models.Voucher
	err := row.Scan(
		&m.VoucherID,
		&m.CompanyID,
		&m.VoucherNo,
		&m.VoucherType,
		&m.VoucherDate,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Narration,
		&m.PostedBy,
		&m.PostedAt,
		&m.ReversesVoucherID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanEntry(row pgx.Row) (models.VoucherEntry, error) {
	var m models.VoucherEntry
	err := row.Scan(
		&m.EntryID,
		&m.VoucherID,
		&m.AccountID,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.Narration,
		&m.LineNo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// findVoucher loads a header and its entries through q. lock is appended to
// the header query.
func findVoucher(ctx context.Context, q querier, companyID, voucherID, lock string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id = $1 AND voucher_id = $2 ` + lock + `;`
	m, err := scanVoucher(q.QueryRow(ctx, query, companyID, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("voucher " + voucherID)
		}
		return nil, mapPgError(err, "failed to find voucher")
	}

	rows, err := q.Query(ctx, `SELECT `+entryColumns+` FROM voucher_entries WHERE voucher_id = $1 ORDER BY line_no;`, voucherID)
	if err != nil {
		return nil, mapPgError(err, "failed to query voucher entries")
	}
	defer rows.Close()

	var entries []models.VoucherEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan voucher entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating voucher entries")
	}

	voucher := mapping.ToDomainVoucher(m)
	voucher.Entries = mapping.ToDomainVoucherEntrySlice(entries)
	return &voucher, nil
}

// FindVoucherByID retrieves a voucher with its entries from one snapshot.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	var voucher *domain.Voucher
	err := r.readSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		voucher, err = findVoucher(ctx, tx, companyID, voucherID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

// ListVouchers retrieves voucher headers ordered by date, creation time and id, newest first.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, companyID string, filter domain.VoucherFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	var conditions []string
	args := []any{companyID}
	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	conditions = append(conditions, "company_id = $1")

	if filter.Type != nil {
		conditions = append(conditions, "voucher_type = "+addArg(string(*filter.Type)))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+addArg(string(*filter.Status)))
	}
	if filter.FromDate != nil {
		conditions = append(conditions, "voucher_date >= "+addArg(*filter.FromDate))
	}
	if filter.ToDate != nil {
		conditions = append(conditions, "voucher_date <= "+addArg(*filter.ToDate))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		conditions = append(conditions, fmt.Sprintf("(voucher_date, created_at, voucher_id) < (%s, %s, %s)",
			addArg(cursor.VoucherDate), addArg(cursor.CreatedAt), addArg(cursor.VoucherID)))
	}

	query := `SELECT ` + voucherColumns + ` FROM vouchers
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY voucher_date DESC, created_at DESC, voucher_id DESC
		LIMIT ` + addArg(limit+1) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapPgError(err, "failed to list vouchers")
	}
	defer rows.Close()

	vouchers := make([]domain.Voucher, 0, limit)
	for rows.Next() {
		m, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, mapPgError(err, "failed to scan voucher row")
		}
		vouchers = append(vouchers, mapping.ToDomainVoucher(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "error iterating voucher rows")
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

// WithTx runs fn in a read-committed transaction. Voucher rows are locked
// explicitly by FindVoucherForUpdate, so a waiter re-reads the committed
// state of the voucher once the lock is released.
func (r *PgxVoucherRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.VoucherTx) error) error {
	tx, err := r.Begin(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := fn(ctx, &pgxVoucherTx{tx: tx}); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// pgxVoucherTx implements portsrepo.VoucherTx on a pgx transaction.
type pgxVoucherTx struct {
	tx pgx.Tx
}

var _ portsrepo.VoucherTx = (*pgxVoucherTx)(nil)

func (t *pgxVoucherTx) FindVoucherForUpdate(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	return findVoucher(ctx, t.tx, companyID, voucherID, "FOR UPDATE")
}

func (t *pgxVoucherTx) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	return findAccountsByIDs(ctx, t.tx, companyID, accountIDs, "FOR SHARE")
}

func (t *pgxVoucherTx) NextVoucherNumber(ctx context.Context, companyID string, voucherType domain.VoucherType) (int64, error) {
	query := `
		INSERT INTO voucher_sequences (company_id, voucher_type, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, voucher_type)
		DO UPDATE SET last_value = voucher_sequences.last_value + 1
		RETURNING last_value;`
	var n int64
	if err := t.tx.QueryRow(ctx, query, companyID, string(voucherType)).Scan(&n); err != nil {
		return 0, mapPgError(err, "failed to reserve voucher number")
	}
	return n, nil
}

func (t *pgxVoucherTx) InsertVoucher(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	query := `INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`
	_, err := t.tx.Exec(ctx, query,
		m.VoucherID,
		m.CompanyID,
		m.VoucherNo,
		m.VoucherType,
		m.VoucherDate,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.Narration,
		m.PostedBy,
		m.PostedAt,
		m.ReversesVoucherID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to insert voucher %s", m.VoucherID))
	}
	return nil
}

func (t *pgxVoucherTx) UpdateVoucherHeader(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	query := `
		UPDATE vouchers
		SET voucher_date = $2, narration = $3, total_debit = $4, total_credit = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE voucher_id = $1 AND status = 'DRAFT';`
	cmdTag, err := t.tx.Exec(ctx, query,
		m.VoucherID, m.VoucherDate, m.Narration, m.TotalDebit, m.TotalCredit, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to update voucher %s", m.VoucherID))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrVoucherNotDraft, m.VoucherNo)
	}
	return nil
}

func (t *pgxVoucherTx) InsertEntry(ctx context.Context, entry domain.VoucherEntry) error {
	m := mapping.ToModelVoucherEntry(entry)
	query := `INSERT INTO voucher_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := t.tx.Exec(ctx, query,
		m.EntryID,
		m.VoucherID,
		m.AccountID,
		m.DebitAmount,
		m.CreditAmount,
		m.Narration,
		m.LineNo,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to insert voucher entry %s", m.EntryID))
	}
	return nil
}

func (t *pgxVoucherTx) DeleteEntry(ctx context.Context, voucherID, entryID string) (bool, error) {
	cmdTag, err := t.tx.Exec(ctx, `DELETE FROM voucher_entries WHERE voucher_id = $1 AND entry_id = $2;`, voucherID, entryID)
	if err != nil {
		return false, mapPgError(err, "failed to delete voucher entry")
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (t *pgxVoucherTx) MarkPosted(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	query := `
		UPDATE vouchers
		SET status = 'POSTED', total_debit = $2, total_credit = $3, posted_by = $4, posted_at = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE voucher_id = $1 AND status = 'DRAFT';`
	cmdTag, err := t.tx.Exec(ctx, query,
		m.VoucherID, m.TotalDebit, m.TotalCredit, m.PostedBy, m.PostedAt, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to post voucher %s", m.VoucherID))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrVoucherNotDraft, m.VoucherNo)
	}
	return nil
}

func (t *pgxVoucherTx) FindReversal(ctx context.Context, companyID, originalID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id = $1 AND reverses_voucher_id = $2;`
	m, err := scanVoucher(t.tx.QueryRow(ctx, query, companyID, originalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError(err, "failed to find reversal")
	}
	voucher := mapping.ToDomainVoucher(m)
	return &voucher, nil
}
