package services

import (
	"time"

	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	portssvc "github.com/moneytransfers/transfers_app/internal/core/ports/services"
)

// NewServiceContainer wires the core services over the given repositories.
func NewServiceContainer(accountRepo portsrepo.AccountRepository, transferRepo portsrepo.TransferRepository, lockTimeout time.Duration) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(accountRepo, transferRepo),
		Ledger:  NewLedgerService(accountRepo, transferRepo, lockTimeout),
	}
}
