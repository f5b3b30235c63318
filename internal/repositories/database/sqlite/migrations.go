package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	if version < 2 {
		if err := migrateV2(ctx, tx); err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}

	return tx.Commit()
}

// migrateV1 mirrors migrations/000001_init_ledger. Amounts are TEXT holding
// exact decimal strings and are summed in Go; dates are YYYY-MM-DD text.
func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			account_id        TEXT PRIMARY KEY,
			company_id        TEXT NOT NULL,
			code              TEXT NOT NULL,
			name              TEXT NOT NULL,
			nature            TEXT NOT NULL CHECK (nature IN ('ASSET','LIABILITY','EQUITY','INCOME','EXPENSE')),
			parent_account_id TEXT REFERENCES accounts(account_id),
			is_control        INTEGER NOT NULL DEFAULT 0,
			opening_balance   TEXT NOT NULL DEFAULT '0',
			classification    TEXT NOT NULL DEFAULT '' CHECK (classification IN ('','CURRENT','NON_CURRENT')),
			is_active         INTEGER NOT NULL DEFAULT 1,
			created_at        TEXT NOT NULL,
			created_by        TEXT NOT NULL,
			last_updated_at   TEXT NOT NULL,
			last_updated_by   TEXT NOT NULL,
			UNIQUE (company_id, code)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(company_id, parent_account_id)`,

		`CREATE TABLE IF NOT EXISTS vouchers (
			voucher_id          TEXT PRIMARY KEY,
			company_id          TEXT NOT NULL,
			voucher_no          TEXT NOT NULL,
			voucher_type        TEXT NOT NULL CHECK (voucher_type IN ('JOURNAL','PAYMENT','RECEIPT','DEPOSIT','RECONCILIATION')),
			voucher_date        TEXT NOT NULL,
			status              TEXT NOT NULL CHECK (status IN ('DRAFT','POSTED')),
			total_debit         TEXT NOT NULL DEFAULT '0',
			total_credit        TEXT NOT NULL DEFAULT '0',
			narration           TEXT NOT NULL DEFAULT '',
			posted_by           TEXT,
			posted_at           TEXT,
			reverses_voucher_id TEXT UNIQUE REFERENCES vouchers(voucher_id),
			created_at          TEXT NOT NULL,
			created_by          TEXT NOT NULL,
			last_updated_at     TEXT NOT NULL,
			last_updated_by     TEXT NOT NULL,
			UNIQUE (company_id, voucher_no)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vouchers_listing ON vouchers(company_id, voucher_date DESC, created_at DESC, voucher_id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_vouchers_posted ON vouchers(company_id, voucher_date) WHERE status = 'POSTED'`,

		`CREATE TABLE IF NOT EXISTS voucher_entries (
			entry_id        TEXT PRIMARY KEY,
			voucher_id      TEXT NOT NULL REFERENCES vouchers(voucher_id) ON DELETE CASCADE,
			account_id      TEXT NOT NULL REFERENCES accounts(account_id),
			debit_amount    TEXT NOT NULL DEFAULT '0',
			credit_amount   TEXT NOT NULL DEFAULT '0',
			narration       TEXT NOT NULL DEFAULT '',
			line_no         INTEGER NOT NULL,
			created_at      TEXT NOT NULL,
			created_by      TEXT NOT NULL,
			last_updated_at TEXT NOT NULL,
			last_updated_by TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_voucher_entries_voucher ON voucher_entries(voucher_id, line_no)`,
		`CREATE INDEX IF NOT EXISTS idx_voucher_entries_account ON voucher_entries(account_id)`,

		`CREATE TABLE IF NOT EXISTS voucher_sequences (
			company_id   TEXT NOT NULL,
			voucher_type TEXT NOT NULL,
			last_value   INTEGER NOT NULL,
			PRIMARY KEY (company_id, voucher_type)
		)`,

		// Lines of a posted voucher are immutable.
		`CREATE TRIGGER IF NOT EXISTS trg_posted_entries_insert
		BEFORE INSERT ON voucher_entries
		WHEN (SELECT status FROM vouchers WHERE voucher_id = NEW.voucher_id) = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot add entries to a posted voucher');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_posted_entries_update
		BEFORE UPDATE ON voucher_entries
		WHEN (SELECT status FROM vouchers WHERE voucher_id = OLD.voucher_id) = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify entries of a posted voucher');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_posted_entries_delete
		BEFORE DELETE ON voucher_entries
		WHEN (SELECT status FROM vouchers WHERE voucher_id = OLD.voucher_id) = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove entries from a posted voucher');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// migrateV2 freezes posted voucher headers; corrections are reversals.
func migrateV2(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TRIGGER IF NOT EXISTS trg_posted_vouchers_update
		BEFORE UPDATE ON vouchers
		WHEN OLD.status = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot change a posted voucher');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_posted_vouchers_delete
		BEFORE DELETE ON vouchers
		WHEN OLD.status = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot delete a posted voucher');
		END`,
		`INSERT INTO schema_version (version) VALUES (2)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
