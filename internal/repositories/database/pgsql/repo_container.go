package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the PostgreSQL repositories around one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(dbPool),
		VoucherRepo: newPgxVoucherRepository(dbPool),
		LedgerRepo:  newPgxLedgerRepository(dbPool),
	}
}
