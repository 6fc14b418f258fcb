package repositories

import (
	"context"

	"github.com/moneytransfers/transfers_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DecideTransfer is invoked by WithLockOrdered with snapshots of both
// accounts read under their locks. It re-validates the transfer (balances may
// have changed since any check taken without locks) and returns the amount to
// move from the first account to the second, or an error to abort with no
// mutation.
type DecideTransfer func(from domain.Account, to domain.Account) (decimal.Decimal, error)

// AccountRepository is the account store port: keyed reads plus the single
// guarded read-modify-write entry point through which balances may change.
type AccountRepository interface {
	// CreateAccount persists a new account with the given number and opening
	// balance, assigning the next account ID. Fails with
	// apperrors.ErrValidation for an empty number or negative balance, and
	// apperrors.ErrDuplicate if the number is already taken.
	CreateAccount(ctx context.Context, number string, initialBalance decimal.Decimal) (domain.Account, error)

	// FindAccountByID returns the account's current snapshot, or
	// apperrors.ErrAccountNotFound.
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// ListAccounts returns all accounts in creation order.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// WithLockOrdered acquires exclusive locks on both accounts in ascending
	// ID order (regardless of transfer direction), invokes decide with the
	// locked snapshots, applies the returned amount to both balances, appends
	// the transfer record while still holding both locks, then releases the
	// locks in reverse order.
	//
	// If ctx expires before both locks are held the operation fails with
	// apperrors.ErrLockTimeout and no state has changed. Once both locks are
	// held the critical section runs to completion.
	WithLockOrdered(ctx context.Context, fromID, toID int64, decide DecideTransfer) (domain.Transfer, error)
}
