package repositories

import (
	"context"
	"time"

	"velvet/internal/models"
)

// LedgerRepository appends balance-affecting entries and keeps the wallet
// projection in sync. Every mutation pairs the entry append with the
// balance update inside one database transaction scoped to the user.
type LedgerRepository interface {
	// Credit adds amount to the user's balance and appends a credit entry.
	// The wallet row is created on first credit.
	Credit(ctx context.Context, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error)

	// Debit subtracts amount from the user's balance and appends a debit
	// entry. Returns ErrInsufficientBalance if the balance would go
	// negative; no entry is written in that case.
	Debit(ctx context.Context, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error)

	// Entries returns the user's ledger history, newest first.
	Entries(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error)

	// BalanceAt reconstructs the balance at a point in time by summing
	// signed entries recorded at or before t.
	BalanceAt(ctx context.Context, userID uint, t time.Time) (int64, error)
}
