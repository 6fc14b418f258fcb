package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// TransferRepository is the in-memory append-only transfer log.
//
// IDs are assigned under the log's own mutex, so they are monotonic in commit
// order and double as append order. Records are never mutated after append.
type TransferRepository struct {
	mu        sync.RWMutex
	nextID    int64
	transfers []domain.Transfer // sorted by TransferID ascending by construction
	byID      map[int64]int     // TransferID -> index into transfers
}

// NewTransferRepository creates an empty in-memory transfer log.
func NewTransferRepository() *TransferRepository {
	return &TransferRepository{
		byID: make(map[int64]int),
	}
}

// append records a completed transfer, assigning its ID and commit timestamp.
// Called by the account repository while both account locks are held; the
// log's own mutex makes concurrent appends for disjoint account pairs safe.
func (r *TransferRepository) append(from, to domain.Account, amount decimal.Decimal) domain.Transfer {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t := domain.Transfer{
		TransferID:  r.nextID,
		FromAccount: from.Ref(),
		ToAccount:   to.Ref(),
		Amount:      amount,
		Timestamp:   time.Now().UTC(),
	}
	r.byID[t.TransferID] = len(r.transfers)
	r.transfers = append(r.transfers, t)
	return t
}

// FindTransferByID returns a single transfer record.
func (r *TransferRepository) FindTransferByID(ctx context.Context, transferID int64) (*domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[transferID]
	if !ok {
		return nil, apperrors.ErrTransferNotFound
	}
	t := r.transfers[idx]
	return &t, nil
}

// ListTransfers returns the full log ordered by transfer ID ascending.
func (r *TransferRepository) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transfer, len(r.transfers))
	copy(out, r.transfers)
	return out, nil
}

// ListTransfersByAccount returns transfers involving the account as sender or
// recipient, most recent first (ties broken by ID descending).
func (r *TransferRepository) ListTransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transfer, 0)
	for _, t := range r.transfers {
		if t.Involves(accountID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].TransferID > out[j].TransferID
	})
	return out, nil
}

var _ portsrepo.TransferRepository = (*TransferRepository)(nil)
