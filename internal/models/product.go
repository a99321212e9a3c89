package models

import "time"

// Product is a catalog row synced from the external CRM. ExternalID is the
// CRM's product id; CRMUpdatedAt carries the CRM's own updatedAt timestamp
// and drives the freshness comparison during sync.
type Product struct {
	ID          uint   `gorm:"primarykey"`
	ExternalID  string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	ImageURL    string
	PriceAmount int64 // minor units
	Currency    string `gorm:"default:'USD'"`
	PriceID     string
	Credits     int64 `gorm:"default:0"`
	LocationID  string

	CRMUpdatedAt time.Time `gorm:"column:crm_updated_at"`
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Purchasable reports whether the product can be checked out: it needs a
// positive price and a positive credit grant.
func (p *Product) Purchasable() bool {
	return p.PriceAmount > 0 && p.Credits > 0
}
