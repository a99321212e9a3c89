package crm

import "time"

// Contact is a CRM contact record.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProductVariant carries the CRM product's variant options. The credit
// grant travels as a variant named "Credits".
type ProductVariant struct {
	Name    string `json:"name"`
	Options []struct {
		Name string `json:"name"`
	} `json:"options"`
}

// Product is a CRM catalog product.
type Product struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	ProductType string           `json:"productType"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Variants    []ProductVariant `json:"variants"`
}

// Price is one price attached to a CRM product. Amount is in major units
// (the CRM reports dollars, not cents).
type Price struct {
	ID       string  `json:"_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Invoice is the CRM's invoice record; only the id matters to us.
type Invoice struct {
	ID string `json:"_id"`
}

// CreateContactParams are the fields sent when creating a contact.
type CreateContactParams struct {
	Email string
	Name  string
	Photo string
	Tags  []string
}

// InvoiceParams describe a draft invoice for a settled purchase.
type InvoiceParams struct {
	ContactID     string
	ContactName   string
	ContactEmail  string
	ProductID     string
	ProductName   string
	PriceID       string
	Amount        float64 // major units
	Currency      string
	InvoiceNumber string
}
