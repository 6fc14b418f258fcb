package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a PostgreSQL-backed account store.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &accountRepository{pool: pool}
}

// CreateAccount inserts a new account; the BIGSERIAL key preserves creation order.
func (r *accountRepository) CreateAccount(ctx context.Context, number string, initialBalance decimal.Decimal) (domain.Account, error) {
	if strings.TrimSpace(number) == "" {
		return domain.Account{}, apperrors.ErrValidation
	}
	if initialBalance.IsNegative() {
		return domain.Account{}, apperrors.ErrValidation
	}

	query := `
		INSERT INTO accounts (number, balance)
		VALUES ($1, $2)
		RETURNING account_id, number, balance, created_at;
	`
	var acc domain.Account
	err := r.pool.QueryRow(ctx, query, number, initialBalance).Scan(
		&acc.AccountID,
		&acc.Number,
		&acc.Balance,
		&acc.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.Account{}, apperrors.ErrDuplicate
		}
		return domain.Account{}, storeFailure("create account", err)
	}
	return acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *accountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	query := `
		SELECT account_id, number, balance, created_at
		FROM accounts
		WHERE account_id = $1;
	`
	var acc domain.Account
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&acc.AccountID,
		&acc.Number,
		&acc.Balance,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, storeFailure("find account", err)
	}
	return &acc, nil
}

// ListAccounts retrieves all accounts in creation order.
func (r *accountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `
		SELECT account_id, number, balance, created_at
		FROM accounts
		ORDER BY account_id ASC;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storeFailure("list accounts", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.AccountID, &acc.Number, &acc.Balance, &acc.CreatedAt); err != nil {
			return nil, storeFailure("scan account", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("iterate accounts", err)
	}
	return accounts, nil
}

// WithLockOrdered executes the transfer inside one database transaction,
// locking both rows with SELECT ... FOR UPDATE in ascending account ID order.
// Row locks substitute for the in-memory entry locks; the rollback on any
// failure provides the same all-or-nothing guarantee.
func (r *accountRepository) WithLockOrdered(ctx context.Context, fromID, toID int64, decide portsrepo.DecideTransfer) (domain.Transfer, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Transfer{}, storeFailure("begin transfer tx", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	locked := make(map[int64]domain.Account, 2)
	for _, id := range []int64{firstID, secondID} {
		var acc domain.Account
		err := tx.QueryRow(ctx, `
			SELECT account_id, number, balance, created_at
			FROM accounts
			WHERE account_id = $1
			FOR UPDATE;
		`, id).Scan(&acc.AccountID, &acc.Number, &acc.Balance, &acc.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Transfer{}, apperrors.ErrAccountNotFound
			}
			return domain.Transfer{}, lockFailure("lock account row", err)
		}
		locked[id] = acc
	}
	from, to := locked[fromID], locked[toID]

	amount, err := decide(from, to)
	if err != nil {
		return domain.Transfer{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $1 WHERE account_id = $2;`, amount, fromID); err != nil {
		return domain.Transfer{}, lockFailure("debit account", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE account_id = $2;`, amount, toID); err != nil {
		return domain.Transfer{}, lockFailure("credit account", err)
	}

	transfer := domain.Transfer{
		FromAccount: from.Ref(),
		ToAccount:   to.Ref(),
		Amount:      amount,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO transfers (from_account_id, to_account_id, amount)
		VALUES ($1, $2, $3)
		RETURNING transfer_id, created_at;
	`, fromID, toID, amount).Scan(&transfer.TransferID, &transfer.Timestamp)
	if err != nil {
		return domain.Transfer{}, lockFailure("append transfer", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Transfer{}, lockFailure("commit transfer", err)
	}
	return transfer, nil
}

// storeFailure wraps a driver error in the store-failure kind without masking
// the underlying cause.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreFailure, op, err)
}

// lockFailure maps a deadline expiry while contending for row locks to the
// timeout kind; anything else is a store failure.
func lockFailure(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.ErrLockTimeout
	}
	return storeFailure(op, err)
}
