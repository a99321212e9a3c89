package models

import "time"

// Purchase statuses. A purchase moves initiated -> pending -> one of the
// terminal states. Only the reconciliation path may move it into paid, and
// it does so with a conditional update so the transition happens at most
// once per record.
const (
	PurchaseStatusInitiated = "initiated"
	PurchaseStatusPending   = "pending"
	PurchaseStatusPaid      = "paid"
	PurchaseStatusFailed    = "failed"
	PurchaseStatusExpired   = "expired"
)

// Purchase tracks a single checkout attempt. The ID is generated by us and
// travels through the payment processor's session metadata as the
// correlation key; rows are never deleted and double as the audit trail.
type Purchase struct {
	ID          string `gorm:"primarykey"` // uuid
	UserID      uint   `gorm:"index;not null"`
	ProductID   string `gorm:"not null"`
	ProductName string
	Amount      int64  `gorm:"not null"` // minor units
	Currency    string `gorm:"default:'usd'"`
	Credits     int64  `gorm:"not null"`

	// Processor identifiers, nil until the processor assigns them.
	// SessionID is unique among non-null values.
	SessionID       *string `gorm:"uniqueIndex"`
	PaymentIntentID *string

	Status    string `gorm:"not null;default:'initiated'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
