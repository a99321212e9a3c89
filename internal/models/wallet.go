package models

import "time"

// Wallet is the materialized credit balance for a user. It is a projection
// of the ledger: every mutation happens inside the same database transaction
// that appends the corresponding LedgerEntry, so the balance always equals
// the signed sum of the user's entries.
type Wallet struct {
	ID        uint  `gorm:"primarykey"`
	UserID    uint  `gorm:"uniqueIndex;not null"`
	Balance   int64 `gorm:"not null;default:0;check:balance >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
