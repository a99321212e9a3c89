package models

import "time"

// Agent statuses
const (
	AgentStatusActive   = "active"
	AgentStatusInactive = "inactive"
)

// Agent is a conversational-voice persona, upserted from the CRM's custom
// object webhook. RecordID is the CRM record id.
type Agent struct {
	ID            uint   `gorm:"primarykey"`
	RecordID      string `gorm:"uniqueIndex;not null"`
	Name          string `gorm:"not null"`
	ImageURL      string
	RatePerMinute int64  `gorm:"default:1"` // credits per started minute
	VoiceAgentID  string `gorm:"index"`     // upstream voice-provider agent id
	Status        string `gorm:"default:'active'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
