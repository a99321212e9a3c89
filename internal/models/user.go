package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	GoogleID    string `gorm:"uniqueIndex;not null"`
	DisplayName string
	Email       string `gorm:"uniqueIndex;not null"`
	Avatar      string
	Role        string `gorm:"default:'user'"`
	LastLoginAt time.Time

	// Linkage to the external CRM contact, set lazily on first login.
	CRMContactID  *string `gorm:"column:crm_contact_id"`
	CRMLocationID *string `gorm:"column:crm_location_id"`
}
