package models

import "time"

// Call log statuses
const (
	CallStatusCompleted    = "completed"
	CallStatusDisconnected = "disconnected"
)

// CallLog records a finished voice call and the credits it consumed. The
// ledger debit references the log's ID.
type CallLog struct {
	ID              string `gorm:"primarykey"` // uuid
	UserID          uint   `gorm:"index;not null"`
	AgentRecordID   string `gorm:"not null"`
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int64
	CreditsUsed     int64
	Status          string `gorm:"default:'completed'"`
	CreatedAt       time.Time
}
