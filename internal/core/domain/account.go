package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a monetary account within the core domain.
// This is the primary representation used by services.
//
// AccountID and Number are immutable after creation; Balance changes only
// through the account store's locked transfer path and never drops below zero.
type Account struct {
	AccountID int64           `json:"id"`      // Assigned by the store, positive, creation order
	Number    string          `json:"number"`  // Unique display identifier, non-empty
	Balance   decimal.Decimal `json:"balance"` // Exact decimal, >= 0
	CreatedAt time.Time       `json:"createdAt"`
}

// Ref returns the lightweight account identity embedded in transfer records.
func (a Account) Ref() AccountRef {
	return AccountRef{AccountID: a.AccountID, Number: a.Number}
}

// AccountRef is a weak reference to an account (identity only, no balance).
// Transfers embed the refs of both parties as resolved at commit time.
type AccountRef struct {
	AccountID int64  `json:"id"`
	Number    string `json:"number"`
}
