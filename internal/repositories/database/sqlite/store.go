package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Store is an embedded single-node ledger store. Writes go through one
// connection, which serialises units of work the way row locks do on
// PostgreSQL; reads use a separate pool and see WAL snapshots.
type Store struct {
	writer *sql.DB
	reader *sql.DB
}

// Open opens (creating if needed) the database at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn+"&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes both connection pools.
func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Ping checks that the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.reader.PingContext(ctx)
}

// Repositories exposes the store through the repository ports.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: &accountRepository{store: s},
		VoucherRepo: &voucherRepository{store: s},
		LedgerRepo:  &ledgerRepository{store: s},
	}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)

type rowScanner interface {
	Scan(dest ...any) error
}

// readSnapshot runs fn in a read transaction; under WAL every statement in
// it sees the same committed state.
func (s *Store) readSnapshot(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.reader.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return mapSQLiteError(err, "failed to begin read transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapSQLiteError(err, "failed to end read transaction")
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, apperrors.NewInternalServerError("malformed timestamp "+s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, apperrors.NewInternalServerError("malformed date "+s, err)
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders renders n comma separated bind markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// mapSQLiteError translates driver errors into the ledger's error kinds.
func mapSQLiteError(err error, msg string) error {
	var sqlErr *sqlitedriver.Error
	if !errors.As(err, &sqlErr) {
		return apperrors.NewInternalServerError(msg, err)
	}
	text := sqlErr.Error()
	switch sqlErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		switch {
		case strings.Contains(text, "UNIQUE constraint failed: accounts.company_id, accounts.code"):
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, msg)
		case strings.Contains(text, "UNIQUE constraint failed"):
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, msg, text)
		case strings.Contains(text, "FOREIGN KEY constraint failed"),
			sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_TRIGGER:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrConflict, msg, text)
		}
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %s: %s", apperrors.ErrTransient, msg, text)
	}
	return apperrors.NewInternalServerError(msg, err)
}
