package checkout

// Metadata keys embedded in the processor session. The processor echoes
// them back verbatim on the checkout-completed event; reconciliation reads
// the same keys.
const (
	MetadataPurchaseID  = "purchase_id"
	MetadataUserID      = "user_id"
	MetadataProductID   = "product_id"
	MetadataProductName = "product_name"
	MetadataCredits     = "credits"
	MetadataPrice       = "price"
)
