package memory

import (
	"context"
	"testing"
	"time"

	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos() (*AccountRepository, *TransferRepository) {
	transfers := NewTransferRepository()
	return NewAccountRepository(transfers), transfers
}

func TestCreateAccount_AssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepos()

	first, err := repo.CreateAccount(ctx, "ACC-1", decimal.NewFromInt(100))
	require.NoError(t, err)
	second, err := repo.CreateAccount(ctx, "ACC-2", decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.AccountID)
	assert.Equal(t, int64(2), second.AccountID)
	assert.Equal(t, "ACC-1", first.Number)
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(100)))
	assert.False(t, first.CreatedAt.IsZero())
}

func TestCreateAccount_RejectsEmptyNumber(t *testing.T) {
	repo, _ := newTestRepos()

	_, err := repo.CreateAccount(context.Background(), "   ", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateAccount_RejectsNegativeBalance(t *testing.T) {
	repo, _ := newTestRepos()

	_, err := repo.CreateAccount(context.Background(), "ACC-1", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateAccount_RejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepos()

	_, err := repo.CreateAccount(ctx, "ACC-1", decimal.Zero)
	require.NoError(t, err)

	_, err = repo.CreateAccount(ctx, "ACC-1", decimal.NewFromInt(50))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestFindAccountByID_NotFound(t *testing.T) {
	repo, _ := newTestRepos()

	_, err := repo.FindAccountByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAccounts_CreationOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepos()

	for _, number := range []string{"ACC-3", "ACC-1", "ACC-2"} {
		_, err := repo.CreateAccount(ctx, number, decimal.Zero)
		require.NoError(t, err)
	}

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "ACC-3", accounts[0].Number)
	assert.Equal(t, "ACC-1", accounts[1].Number)
	assert.Equal(t, "ACC-2", accounts[2].Number)
}

func TestWithLockOrdered_AppliesBothSidesAndRecords(t *testing.T) {
	ctx := context.Background()
	repo, transfers := newTestRepos()

	from, err := repo.CreateAccount(ctx, "ACC-1", decimal.NewFromInt(300))
	require.NoError(t, err)
	to, err := repo.CreateAccount(ctx, "ACC-2", decimal.NewFromInt(400))
	require.NoError(t, err)

	transfer, err := repo.WithLockOrdered(ctx, from.AccountID, to.AccountID,
		func(from, to domain.Account) (decimal.Decimal, error) {
			return decimal.NewFromInt(100), nil
		})
	require.NoError(t, err)

	assert.Equal(t, int64(1), transfer.TransferID)
	assert.Equal(t, from.AccountID, transfer.FromAccount.AccountID)
	assert.Equal(t, to.AccountID, transfer.ToAccount.AccountID)
	assert.True(t, transfer.Amount.Equal(decimal.NewFromInt(100)))

	gotFrom, err := repo.FindAccountByID(ctx, from.AccountID)
	require.NoError(t, err)
	gotTo, err := repo.FindAccountByID(ctx, to.AccountID)
	require.NoError(t, err)
	assert.True(t, gotFrom.Balance.Equal(decimal.NewFromInt(200)))
	assert.True(t, gotTo.Balance.Equal(decimal.NewFromInt(500)))

	log, err := transfers.ListTransfers(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestWithLockOrdered_MissingAccount(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepos()

	acct, err := repo.CreateAccount(ctx, "ACC-1", decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = repo.WithLockOrdered(ctx, acct.AccountID, 99, func(from, to domain.Account) (decimal.Decimal, error) {
		t.Fatal("decide must not run when an account is missing")
		return decimal.Zero, nil
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestWithLockOrdered_DecideErrorLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	repo, transfers := newTestRepos()

	from, err := repo.CreateAccount(ctx, "ACC-1", decimal.NewFromInt(50))
	require.NoError(t, err)
	to, err := repo.CreateAccount(ctx, "ACC-2", decimal.NewFromInt(75))
	require.NoError(t, err)

	_, err = repo.WithLockOrdered(ctx, from.AccountID, to.AccountID,
		func(from, to domain.Account) (decimal.Decimal, error) {
			return decimal.Zero, apperrors.ErrInsufficientFunds
		})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	gotFrom, err := repo.FindAccountByID(ctx, from.AccountID)
	require.NoError(t, err)
	gotTo, err := repo.FindAccountByID(ctx, to.AccountID)
	require.NoError(t, err)
	assert.True(t, gotFrom.Balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, gotTo.Balance.Equal(decimal.NewFromInt(75)))

	log, err := transfers.ListTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestWithLockOrdered_TimesOutWhenLockHeld(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepos()

	from, err := repo.CreateAccount(ctx, "ACC-1", decimal.NewFromInt(100))
	require.NoError(t, err)
	to, err := repo.CreateAccount(ctx, "ACC-2", decimal.NewFromInt(100))
	require.NoError(t, err)

	// Hold the first lock in acquisition order so the transfer blocks.
	repo.mu.RLock()
	entry := repo.accounts[from.AccountID]
	repo.mu.RUnlock()
	entry.lock <- struct{}{}
	defer func() { <-entry.lock }()

	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	_, err = repo.WithLockOrdered(timeoutCtx, from.AccountID, to.AccountID,
		func(from, to domain.Account) (decimal.Decimal, error) {
			return decimal.NewFromInt(1), nil
		})
	assert.ErrorIs(t, err, apperrors.ErrLockTimeout)

	// The untouched second account must still be lockable afterwards.
	releaseCtx, cancelRelease := context.WithTimeout(ctx, time.Second)
	defer cancelRelease()
	got, err := repo.FindAccountByID(releaseCtx, to.AccountID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
}
