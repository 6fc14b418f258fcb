package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is an immutable record of money moved between two distinct
// accounts. Once appended to the transfer log it is never mutated or deleted.
type Transfer struct {
	TransferID  int64           `json:"id"` // Assigned by the log, monotonic in commit order
	FromAccount AccountRef      `json:"fromAccount"`
	ToAccount   AccountRef      `json:"toAccount"`
	Amount      decimal.Decimal `json:"amount"`    // Exact decimal, > 0
	Timestamp   time.Time       `json:"timestamp"` // Set exactly once at commit
}

// Involves reports whether the account took part in this transfer as
// either sender or recipient.
func (t Transfer) Involves(accountID int64) bool {
	return t.FromAccount.AccountID == accountID || t.ToAccount.AccountID == accountID
}
