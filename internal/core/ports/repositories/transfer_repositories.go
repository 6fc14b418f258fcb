package repositories

import (
	"context"

	"github.com/moneytransfers/transfers_app/internal/core/domain"
)

// TransferRepository is the read side of the append-only transfer log.
// Appending is engine-only and happens inside the account store's locked
// critical section, so it is deliberately absent from this port.
type TransferRepository interface {
	// FindTransferByID returns a single transfer, or apperrors.ErrTransferNotFound.
	FindTransferByID(ctx context.Context, transferID int64) (*domain.Transfer, error)

	// ListTransfers returns the full log ordered by transfer ID ascending.
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)

	// ListTransfersByAccount returns transfers where the account is sender or
	// recipient, ordered by timestamp descending (ties broken by ID descending).
	ListTransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error)
}
