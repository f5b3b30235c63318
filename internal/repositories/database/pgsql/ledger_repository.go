package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/models"
	"github.com/SscSPs/gl_engine/internal/utils/mapping"
)

// PgxLedgerRepository reads posted entries. Drafts never reach it: every
// query filters on status = 'POSTED'.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

const postedTotalsQuery = `
	SELECT e.account_id, COALESCE(SUM(e.debit_amount), 0), COALESCE(SUM(e.credit_amount), 0)
	FROM voucher_entries e
	JOIN vouchers v ON v.voucher_id = e.voucher_id
	WHERE v.company_id = $1
		AND v.status = 'POSTED'
		AND v.voucher_date <= $2
		AND ($3::date IS NULL OR v.voucher_date >= $3)
		AND ($4::text[] IS NULL OR e.account_id = ANY($4))
	GROUP BY e.account_id;`

func postedTotals(ctx context.Context, q querier, companyID string, from *time.Time, to time.Time, accountIDs []string) (map[string]domain.PostingTotals, error) {
	rows, err := q.Query(ctx, postedTotalsQuery, companyID, to, from, accountIDs)
	if err != nil {
		return nil, mapPgError(err, "failed to sum posted entries")
	}
	defer rows.Close()

	totals := make(map[string]domain.PostingTotals)
	for rows.Next() {
		var accountID string
		var debit, credit decimal.Decimal
		if err := rows.Scan(&accountID, &debit, &credit); err != nil {
			return nil, mapPgError(err, "failed to scan posted totals")
		}
		totals[accountID] = domain.PostingTotals{Debit: debit, Credit: credit}
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating posted totals")
	}
	return totals, nil
}

// LoadSnapshot reads the chart of accounts and posted totals in one
// repeatable-read transaction.
func (r *PgxLedgerRepository) LoadSnapshot(ctx context.Context, companyID string, from *time.Time, to time.Time) (*domain.LedgerSnapshot, error) {
	snap := &domain.LedgerSnapshot{CompanyID: companyID, From: from, To: to}
	err := r.readSnapshot(ctx, func(tx pgx.Tx) error {
		accounts, err := listAccounts(ctx, tx, companyID, true)
		if err != nil {
			return err
		}
		totals, err := postedTotals(ctx, tx, companyID, from, to, nil)
		if err != nil {
			return err
		}
		snap.Accounts = accounts
		snap.Totals = totals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// PostedTotals sums posted entries for the given accounts up to cutoff.
func (r *PgxLedgerRepository) PostedTotals(ctx context.Context, companyID string, accountIDs []string, cutoff time.Time) (map[string]domain.PostingTotals, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.PostingTotals{}, nil
	}
	return postedTotals(ctx, r.Pool, companyID, nil, cutoff, accountIDs)
}

// LoadAccountActivity returns the totals before from and the entries in
// [from, to] for one account.
func (r *PgxLedgerRepository) LoadAccountActivity(ctx context.Context, companyID, accountID string, from, to time.Time) (domain.PostingTotals, []domain.PostedEntry, error) {
	var before domain.PostingTotals
	var entries []domain.PostedEntry

	err := r.readSnapshot(ctx, func(tx pgx.Tx) error {
		totals, err := postedTotals(ctx, tx, companyID, nil, from.AddDate(0, 0, -1), []string{accountID})
		if err != nil {
			return err
		}
		before = totals[accountID]

		query := `
			SELECT e.entry_id, e.voucher_id, e.account_id, e.debit_amount, e.credit_amount, e.narration, e.line_no,
				e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
				v.voucher_no, v.voucher_type, v.voucher_date
			FROM voucher_entries e
			JOIN vouchers v ON v.voucher_id = e.voucher_id
			WHERE v.company_id = $1 AND e.account_id = $2 AND v.status = 'POSTED'
				AND v.voucher_date BETWEEN $3 AND $4
			ORDER BY v.voucher_date, v.posted_at, e.line_no;`
		rows, err := tx.Query(ctx, query, companyID, accountID, from, to)
		if err != nil {
			return mapPgError(err, "failed to query account activity")
		}
		defer rows.Close()

		for rows.Next() {
			var m models.VoucherEntry
			var pe domain.PostedEntry
			var voucherType string
			err := rows.Scan(
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
				&pe.VoucherNo,
				&voucherType,
				&pe.VoucherDate,
			)
			if err != nil {
				return mapPgError(err, "failed to scan account activity")
			}
			pe.VoucherEntry = mapping.ToDomainVoucherEntry(m)
			pe.VoucherType = domain.VoucherType(voucherType)
			pe.VoucherDate = domain.DateOnly(pe.VoucherDate)
			entries = append(entries, pe)
		}
		if err := rows.Err(); err != nil {
			return mapPgError(err, "error iterating account activity")
		}
		return nil
	})
	if err != nil {
		return domain.PostingTotals{}, nil, err
	}
	return before, entries, nil
}
