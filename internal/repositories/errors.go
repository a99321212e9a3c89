package repositories

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrAgentNotFound    = errors.New("agent not found")

	// ErrInsufficientBalance means a debit would take the balance below
	// zero. No ledger entry is written when it is returned.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount means a ledger operation was asked to move a
	// non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
)
