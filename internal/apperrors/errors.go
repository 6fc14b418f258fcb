package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrAccountNotFound indicates that a referenced account does not exist.
// It matches ErrNotFound under errors.Is.
var ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)

// ErrTransferNotFound indicates that a referenced transfer does not exist.
// It matches ErrNotFound under errors.Is.
var ErrTransferNotFound = fmt.Errorf("%w: transfer", ErrNotFound)

// ErrValidation indicates that input data failed validation checks
// (empty account number, non-positive amount, negative opening balance).
var ErrValidation = errors.New("validation error")

// ErrSelfTransfer indicates a transfer where sender and recipient are the same account.
var ErrSelfTransfer = errors.New("sender and recipient accounts must differ")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates the sender's balance cannot cover the transfer amount.
// Detected under both account locks; guaranteed to leave no partial mutation.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrLockTimeout indicates the caller's deadline elapsed before both account
// locks were acquired. Nothing was held or committed.
var ErrLockTimeout = errors.New("timed out waiting for account locks")

// ErrStoreFailure indicates the underlying storage backend failed. Fatal for
// the request; never retried and never masked as another error kind.
var ErrStoreFailure = errors.New("storage failure")
