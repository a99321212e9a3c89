package models

import "time"

// Ledger entry directions
const (
	LedgerDirectionCredit = "credit"
	LedgerDirectionDebit  = "debit"
)

// Ledger entry reasons
const (
	LedgerReasonPurchase = "purchase"
	LedgerReasonCall     = "call"
	LedgerReasonRefund   = "refund"
	LedgerReasonAdmin    = "admin"
)

// LedgerEntry is an immutable record of a single balance-affecting event.
// Entries are append-only; they are never updated or deleted, so replaying
// them in order reconstructs the wallet balance at any point in time.
type LedgerEntry struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"index;not null"`
	Direction    string `gorm:"not null"`
	Amount       int64  `gorm:"not null"`
	Reason       string `gorm:"not null"`
	Reference    string // purchase id or call log id
	BalanceAfter int64  `gorm:"not null"`
	CreatedAt    time.Time `gorm:"index"`
}

// Signed returns the entry amount with its direction applied.
func (e *LedgerEntry) Signed() int64 {
	if e.Direction == LedgerDirectionDebit {
		return -e.Amount
	}
	return e.Amount
}
