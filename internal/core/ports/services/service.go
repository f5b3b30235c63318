package services

// ServiceContainer holds instances of all the application services.
// Handlers and CLI commands reach the ledger through it.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Voucher   VoucherSvcFacade
	Balance   BalanceSvc
	Reporting ReportingService
}
