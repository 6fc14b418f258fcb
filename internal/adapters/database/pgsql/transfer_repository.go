package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
)

type transferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a PostgreSQL-backed view over the transfer log.
func NewTransferRepository(pool *pgxpool.Pool) portsrepo.TransferRepository {
	return &transferRepository{pool: pool}
}

// transferSelect joins both accounts so each record carries the resolved
// identities of sender and recipient.
const transferSelect = `
	SELECT t.transfer_id, t.amount, t.created_at,
	       f.account_id, f.number,
	       r.account_id, r.number
	FROM transfers t
	JOIN accounts f ON f.account_id = t.from_account_id
	JOIN accounts r ON r.account_id = t.to_account_id
`

func scanTransfer(row pgx.Row) (domain.Transfer, error) {
	var t domain.Transfer
	err := row.Scan(
		&t.TransferID,
		&t.Amount,
		&t.Timestamp,
		&t.FromAccount.AccountID,
		&t.FromAccount.Number,
		&t.ToAccount.AccountID,
		&t.ToAccount.Number,
	)
	return t, err
}

// FindTransferByID retrieves a single transfer with both account refs resolved.
func (r *transferRepository) FindTransferByID(ctx context.Context, transferID int64) (*domain.Transfer, error) {
	t, err := scanTransfer(r.pool.QueryRow(ctx, transferSelect+` WHERE t.transfer_id = $1;`, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTransferNotFound
		}
		return nil, storeFailure("find transfer", err)
	}
	return &t, nil
}

// ListTransfers retrieves the full log ordered by transfer ID ascending.
func (r *transferRepository) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	return r.queryTransfers(ctx, transferSelect+` ORDER BY t.transfer_id ASC;`)
}

// ListTransfersByAccount retrieves the account's history, most recent first.
func (r *transferRepository) ListTransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	return r.queryTransfers(ctx, transferSelect+`
		WHERE t.from_account_id = $1 OR t.to_account_id = $1
		ORDER BY t.created_at DESC, t.transfer_id DESC;
	`, accountID)
}

func (r *transferRepository) queryTransfers(ctx context.Context, query string, args ...any) ([]domain.Transfer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeFailure("query transfers", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, storeFailure("scan transfer", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("iterate transfers", err)
	}
	return transfers, nil
}
