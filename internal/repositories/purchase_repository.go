package repositories

import (
	"context"

	"velvet/internal/models"
)

// SettleParams carries the reconciliation input extracted from a verified
// checkout-completed event.
type SettleParams struct {
	PurchaseID      string
	SessionID       string
	PaymentIntentID string
	Credits         int64
}

// SettleResult reports what a Settle call did. Settled is false when the
// conditional update matched no rows, i.e. the purchase does not exist or
// was already paid (a duplicate delivery).
type SettleResult struct {
	Settled  bool
	Purchase *models.Purchase
	Entry    *models.LedgerEntry
}

// PurchaseRepository persists checkout attempts and performs the atomic
// settlement that is the system's idempotency boundary.
type PurchaseRepository interface {
	Create(ctx context.Context, p *models.Purchase) error
	GetByID(ctx context.Context, id string) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Purchase, error)

	// AttachSession stores the processor session id and moves the
	// purchase from initiated to pending.
	AttachSession(ctx context.Context, id, sessionID string) error

	// Settle performs, in one database transaction: a conditional update
	// that moves the purchase to paid only if it is not paid yet, and on
	// success the ledger credit for the purchase's user. Redelivering the
	// same event any number of times therefore credits at most once.
	Settle(ctx context.Context, params SettleParams) (*SettleResult, error)

	// MarkClosed moves a non-paid purchase to failed or expired.
	MarkClosed(ctx context.Context, id, status string) error
}
