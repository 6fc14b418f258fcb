package services

import (
	"context"

	"github.com/moneytransfers/transfers_app/internal/core/domain"
	"github.com/moneytransfers/transfers_app/internal/dto"
)

// AccountServiceFacade exposes account creation and the account-scoped read
// projections consumed by the HTTP layer.
type AccountServiceFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListAccountTransfers(ctx context.Context, accountID int64) ([]domain.Transfer, error)
}

// LedgerServiceFacade exposes the transfer engine and the transfer log read
// projections.
type LedgerServiceFacade interface {
	Transfer(ctx context.Context, req dto.CreateTransferRequest) (*domain.Transfer, error)
	GetTransferByID(ctx context.Context, transferID int64) (*domain.Transfer, error)
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)
}

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Account AccountServiceFacade
	Ledger  LedgerServiceFacade
}
