package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both the PostgreSQL and the SQLite stores produce one.
type RepositoryProvider struct {
	AccountRepo AccountRepositoryFacade
	VoucherRepo VoucherRepositoryFacade
	LedgerRepo  LedgerReader
}
