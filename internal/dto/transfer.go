package dto

import (
	"time"

	"github.com/moneytransfers/transfers_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest defines the data needed to execute a transfer.
// Amount validation (strictly positive) lives in the ledger service so that
// the failure surfaces with the validation error kind rather than a bare
// binding error.
type CreateTransferRequest struct {
	FromAccountID int64           `json:"fromAccountID" binding:"required"`
	ToAccountID   int64           `json:"toAccountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferAccountRef is the account identity embedded in a transfer response.
type TransferAccountRef struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

// TransferResponse defines the data returned for a transfer.
type TransferResponse struct {
	ID          int64              `json:"id"`
	FromAccount TransferAccountRef `json:"fromAccount"`
	ToAccount   TransferAccountRef `json:"toAccount"`
	Amount      decimal.Decimal    `json:"amount"`
	Timestamp   time.Time          `json:"timestamp"`
}

// ListTransfersResponse wraps the list of transfers.
type ListTransfersResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// ToTransferResponse converts a domain.Transfer to TransferResponse DTO.
func ToTransferResponse(t *domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:          t.TransferID,
		FromAccount: TransferAccountRef{ID: t.FromAccount.AccountID, Number: t.FromAccount.Number},
		ToAccount:   TransferAccountRef{ID: t.ToAccount.AccountID, Number: t.ToAccount.Number},
		Amount:      t.Amount,
		Timestamp:   t.Timestamp,
	}
}

// ToListTransferResponse converts a slice of domain.Transfer to response DTOs.
func ToListTransferResponse(transfers []domain.Transfer) []TransferResponse {
	res := make([]TransferResponse, len(transfers))
	for i := range transfers {
		res[i] = ToTransferResponse(&transfers[i])
	}
	return res
}
