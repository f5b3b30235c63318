package services

import (
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo),
		Voucher: NewVoucherService(
			repos.VoucherRepo,
			WithEpsilon(cfg.BalanceEpsilon),
			WithPostRetry(cfg.PostMaxRetries, cfg.PostRetryBackoff),
		),
		Balance:   NewBalanceService(repos.AccountRepo, repos.LedgerRepo),
		Reporting: NewReportingService(repos.LedgerRepo, WithReportingEpsilon(cfg.BalanceEpsilon)),
	}
}
