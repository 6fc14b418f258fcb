package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	"github.com/moneytransfers/transfers_app/internal/dto"
	"github.com/moneytransfers/transfers_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// LedgerService is the transfer engine: it executes a transfer as one atomic,
// isolated step against the account store and transfer log, and serves the
// transfer log read projections.
type LedgerService struct {
	accountRepo  portsrepo.AccountRepository
	transferRepo portsrepo.TransferRepository
	lockTimeout  time.Duration // 0 means wait indefinitely for account locks
}

// NewLedgerService creates a new LedgerService. lockTimeout bounds how long a
// transfer may wait to acquire both account locks; it does not bound the
// critical section itself, which runs to completion once the locks are held.
func NewLedgerService(accountRepo portsrepo.AccountRepository, transferRepo portsrepo.TransferRepository, lockTimeout time.Duration) *LedgerService {
	return &LedgerService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		lockTimeout:  lockTimeout,
	}
}

// Transfer moves req.Amount from one account to the other.
//
// Preconditions (checked fail-fast, before any lock is taken): the amount is
// strictly positive, the accounts are distinct, and both exist. The balance
// check runs again under both locks — the fail-fast reads are unlocked and
// may be stale by the time the locks are held.
//
// Either both balances change and the transfer is recorded, or nothing
// happens at all.
func (s *LedgerService) Transfer(ctx context.Context, req dto.CreateTransferRequest) (*domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.Int64("from_account_id", req.FromAccountID),
		slog.Int64("to_account_id", req.ToAccountID),
		slog.String("amount", req.Amount.String()),
	)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrValidation
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, apperrors.ErrSelfTransfer
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, req.FromAccountID); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, req.ToAccountID); err != nil {
		return nil, err
	}

	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	transfer, err := s.accountRepo.WithLockOrdered(ctx, req.FromAccountID, req.ToAccountID,
		func(from, to domain.Account) (decimal.Decimal, error) {
			if from.Balance.LessThan(req.Amount) {
				return decimal.Zero, apperrors.ErrInsufficientFunds
			}
			return req.Amount, nil
		})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) || errors.Is(err, apperrors.ErrLockTimeout) {
			logger.Warn("Transfer rejected", slog.String("reason", err.Error()))
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Transfer failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("Transfer committed", slog.Int64("transfer_id", transfer.TransferID))
	return &transfer, nil
}

// GetTransferByID retrieves a single transfer record.
func (s *LedgerService) GetTransferByID(ctx context.Context, transferID int64) (*domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transfer by ID in repository", slog.String("error", err.Error()), slog.Int64("transfer_id", transferID))
		}
		return nil, err
	}
	return transfer, nil
}

// ListTransfers retrieves the full transfer log, oldest first.
func (s *LedgerService) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	transfers, err := s.transferRepo.ListTransfers(ctx)
	if err != nil {
		logger.Error("Failed to list transfers from repository", slog.String("error", err.Error()))
		return nil, err
	}
	if transfers == nil {
		return []domain.Transfer{}, nil
	}
	return transfers, nil
}
