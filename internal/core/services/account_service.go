package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/moneytransfers/transfers_app/internal/apperrors"
	"github.com/moneytransfers/transfers_app/internal/core/domain"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	"github.com/moneytransfers/transfers_app/internal/dto"
	"github.com/moneytransfers/transfers_app/internal/middleware"
)

// AccountService provides account creation and the read projections over the
// account store and transfer log. Reads take no engine locks; any state they
// observe is a fully committed one.
type AccountService struct {
	accountRepo  portsrepo.AccountRepository
	transferRepo portsrepo.TransferRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepository, transferRepo portsrepo.TransferRepository) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
	}
}

// CreateAccount creates a new account with the requested number and opening balance.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.CreateAccount(ctx, req.Number, req.Balance)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to create account in repository", slog.String("error", err.Error()), slog.String("number", req.Number))
		}
		return nil, err
	}

	logger.Info("Account created", slog.Int64("account_id", account.AccountID), slog.String("number", account.Number))
	return &account, nil
}

// GetAccountByID retrieves a single account snapshot.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.Int64("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves all accounts in creation order.
func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()))
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// ListAccountTransfers retrieves the account's transfer history, most recent
// first. Fails with ErrAccountNotFound if the account does not exist.
func (s *AccountService) ListAccountTransfers(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	transfers, err := s.transferRepo.ListTransfersByAccount(ctx, accountID)
	if err != nil {
		logger.Error("Failed to list account transfers from repository", slog.String("error", err.Error()), slog.Int64("account_id", accountID))
		return nil, err
	}
	if transfers == nil {
		return []domain.Transfer{}, nil
	}
	return transfers, nil
}
