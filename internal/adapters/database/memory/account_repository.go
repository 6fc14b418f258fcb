package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// accountEntry pairs an account with its exclusive lock.
//
// The lock is a buffered channel of capacity one rather than a sync.Mutex so
// that acquisition can be raced against the caller's context deadline: a
// blocked acquire gives up cleanly when the deadline fires, and a held lock
// is released by draining the token.
type accountEntry struct {
	lock chan struct{}
	acct domain.Account
}

// AccountRepository is the in-memory account store.
//
// The map and ID sequence are guarded by mu; each account's balance is
// guarded by its own entry lock. All multi-account mutations go through
// WithLockOrdered, which acquires entry locks in ascending account ID order —
// the global order that makes waiter cycles, and therefore deadlock,
// impossible.
type AccountRepository struct {
	mu        sync.RWMutex
	nextID    int64
	accounts  map[int64]*accountEntry
	byNumber  map[string]int64
	order     []int64 // account IDs in creation order
	transfers *TransferRepository
}

// NewAccountRepository creates an empty in-memory account store. The transfer
// log is injected so the locked transfer path can append to it while both
// account locks are held, keeping the record atomic with the balance change.
func NewAccountRepository(transfers *TransferRepository) *AccountRepository {
	return &AccountRepository{
		accounts:  make(map[int64]*accountEntry),
		byNumber:  make(map[string]int64),
		transfers: transfers,
	}
}

// CreateAccount persists a new account and assigns the next account ID.
func (r *AccountRepository) CreateAccount(ctx context.Context, number string, initialBalance decimal.Decimal) (domain.Account, error) {
	if strings.TrimSpace(number) == "" {
		return domain.Account{}, apperrors.ErrValidation
	}
	if initialBalance.IsNegative() {
		return domain.Account{}, apperrors.ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[number]; exists {
		return domain.Account{}, apperrors.ErrDuplicate
	}

	r.nextID++
	acct := domain.Account{
		AccountID: r.nextID,
		Number:    number,
		Balance:   initialBalance,
		CreatedAt: time.Now().UTC(),
	}
	r.accounts[acct.AccountID] = &accountEntry{
		lock: make(chan struct{}, 1),
		acct: acct,
	}
	r.byNumber[number] = acct.AccountID
	r.order = append(r.order, acct.AccountID)
	return acct, nil
}

// FindAccountByID returns the account's current snapshot. The entry lock is
// taken briefly so the snapshot is always a fully committed state, never a
// half-applied transfer.
func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	r.mu.RLock()
	entry, ok := r.accounts[accountID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}

	if err := r.acquire(ctx, entry); err != nil {
		return nil, err
	}
	snapshot := entry.acct
	r.release(entry)
	return &snapshot, nil
}

// ListAccounts returns snapshots of all accounts in creation order.
func (r *AccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	entries := make([]*accountEntry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.accounts[id])
	}
	r.mu.RUnlock()

	out := make([]domain.Account, 0, len(entries))
	for _, entry := range entries {
		if err := r.acquire(ctx, entry); err != nil {
			return nil, err
		}
		out = append(out, entry.acct)
		r.release(entry)
	}
	return out, nil
}

// WithLockOrdered executes a transfer between the two accounts as a single
// critical section under both entry locks. See the port contract.
func (r *AccountRepository) WithLockOrdered(ctx context.Context, fromID, toID int64, decide portsrepo.DecideTransfer) (domain.Transfer, error) {
	r.mu.RLock()
	fromEntry, okFrom := r.accounts[fromID]
	toEntry, okTo := r.accounts[toID]
	r.mu.RUnlock()
	if !okFrom || !okTo {
		return domain.Transfer{}, apperrors.ErrAccountNotFound
	}

	// Ascending account ID is the global acquisition order: two racing
	// transfers over the same pair contend for the same first lock no matter
	// which direction they move money.
	first, second := fromEntry, toEntry
	if second.acct.AccountID < first.acct.AccountID {
		first, second = second, first
	}

	if err := r.acquire(ctx, first); err != nil {
		return domain.Transfer{}, err
	}
	if err := r.acquire(ctx, second); err != nil {
		r.release(first)
		return domain.Transfer{}, err
	}
	// Release in reverse acquisition order.
	defer r.release(first)
	defer r.release(second)

	amount, err := decide(fromEntry.acct, toEntry.acct)
	if err != nil {
		return domain.Transfer{}, err
	}

	fromEntry.acct.Balance = fromEntry.acct.Balance.Sub(amount)
	toEntry.acct.Balance = toEntry.acct.Balance.Add(amount)

	// Appended while both locks are held: no observer can see the balance
	// change without the record, or the record without the balance change.
	transfer := r.transfers.append(fromEntry.acct, toEntry.acct, amount)
	return transfer, nil
}

// acquire takes the entry's lock, giving up with ErrLockTimeout if the
// context expires first.
func (r *AccountRepository) acquire(ctx context.Context, entry *accountEntry) error {
	select {
	case entry.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apperrors.ErrLockTimeout
	}
}

func (r *AccountRepository) release(entry *accountEntry) {
	<-entry.lock
}

var _ portsrepo.AccountRepository = (*AccountRepository)(nil)
