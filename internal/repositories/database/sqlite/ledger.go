package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/utils/mapping"
)

type ledgerRepository struct {
	store *Store
}

var _ portsrepo.LedgerReader = (*ledgerRepository)(nil)

// postedTotals sums posted lines per account. SQLite has no exact decimal
// type, so the rows are read as text and added with decimal arithmetic.
func postedTotals(ctx context.Context, q querier, companyID string, from *time.Time, to time.Time, accountIDs []string) (map[string]domain.PostingTotals, error) {
	query := `SELECT e.account_id, e.debit_amount, e.credit_amount
		FROM voucher_entries e
		JOIN vouchers v ON v.voucher_id = e.voucher_id
		WHERE v.company_id = ? AND v.status = 'POSTED' AND v.voucher_date <= ?`
	args := []any{companyID, formatDate(to)}
	if from != nil {
		query += ` AND v.voucher_date >= ?`
		args = append(args, formatDate(*from))
	}
	if accountIDs != nil {
		query += ` AND e.account_id IN (` + placeholders(len(accountIDs)) + `)`
		for _, id := range accountIDs {
			args = append(args, id)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err, "failed to read posted entries")
	}
	defer rows.Close()

	totals := make(map[string]domain.PostingTotals)
	for rows.Next() {
		var accountID string
		var debit, credit decimal.Decimal
		if err := rows.Scan(&accountID, &debit, &credit); err != nil {
			return nil, mapSQLiteError(err, "failed to scan posted entry")
		}
		totals[accountID] = totals[accountID].Add(domain.PostingTotals{Debit: debit, Credit: credit})
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, "error iterating posted entries")
	}
	return totals, nil
}

func (r *ledgerRepository) LoadSnapshot(ctx context.Context, companyID string, from *time.Time, to time.Time) (*domain.LedgerSnapshot, error) {
	snap := &domain.LedgerSnapshot{CompanyID: companyID, From: from, To: to}
	err := r.store.readSnapshot(ctx, func(tx *sql.Tx) error {
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

func (r *ledgerRepository) PostedTotals(ctx context.Context, companyID string, accountIDs []string, cutoff time.Time) (map[string]domain.PostingTotals, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.PostingTotals{}, nil
	}
	return postedTotals(ctx, r.store.reader, companyID, nil, cutoff, accountIDs)
}

func (r *ledgerRepository) LoadAccountActivity(ctx context.Context, companyID, accountID string, from, to time.Time) (domain.PostingTotals, []domain.PostedEntry, error) {
	var before domain.PostingTotals
	var entries []domain.PostedEntry

	err := r.store.readSnapshot(ctx, func(tx *sql.Tx) error {
		totals, err := postedTotals(ctx, tx, companyID, nil, from.AddDate(0, 0, -1), []string{accountID})
		if err != nil {
			return err
		}
		before = totals[accountID]

		rows, err := tx.QueryContext(ctx, `
			SELECT e.entry_id, e.voucher_id, e.account_id, e.debit_amount, e.credit_amount, e.narration, e.line_no,
				e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
				v.voucher_no, v.voucher_type, v.voucher_date
			FROM voucher_entries e
			JOIN vouchers v ON v.voucher_id = e.voucher_id
			WHERE v.company_id = ? AND e.account_id = ? AND v.status = 'POSTED'
				AND v.voucher_date BETWEEN ? AND ?
			ORDER BY v.voucher_date, v.posted_at, e.line_no`,
			companyID, accountID, formatDate(from), formatDate(to))
		if err != nil {
			return mapSQLiteError(err, "failed to query account activity")
		}
		defer rows.Close()

		for rows.Next() {
			var pe domain.PostedEntry
			var voucherType, voucherDate string
			m, err := scanEntry(rows, &pe.VoucherNo, &voucherType, &voucherDate)
			if err != nil {
				return mapSQLiteError(err, "failed to scan account activity")
			}
			if pe.VoucherDate, err = parseDate(voucherDate); err != nil {
				return err
			}
			pe.VoucherEntry = mapping.ToDomainVoucherEntry(m)
			pe.VoucherType = domain.VoucherType(voucherType)
			entries = append(entries, pe)
		}
		if err := rows.Err(); err != nil {
			return mapSQLiteError(err, "error iterating account activity")
		}
		return nil
	})
	if err != nil {
		return domain.PostingTotals{}, nil, err
	}
	return before, entries, nil
}
