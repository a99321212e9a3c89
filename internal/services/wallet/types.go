package wallet

import (
	"context"
	"time"

	"velvet/internal/models"
)

// Service exposes the wallet projection and the two ledger operations.
// Credits arrive from the reconciliation path and admin adjustments;
// debits come from call billing. Both return the resulting balance so the
// caller can surface it directly.
type Service interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetBalance(ctx context.Context, userID uint) (int64, error)
	Credit(ctx context.Context, userID uint, amount int64, reason, reference string) (int64, error)
	Debit(ctx context.Context, userID uint, amount int64, reason, reference string) (int64, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error)
}

// CacheOperator is the wallet-projection cache used to serve balance reads.
type CacheOperator interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

// MetricsCollector records wallet operation metrics.
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordCredits(direction string, amount int64)
	RecordError(operation, errType string)
}
