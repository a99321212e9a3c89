package checkout

import "errors"

var (
	// ErrProductInvalid means the product is missing, has no price, or
	// grants no credits. The purchase record, if created, stays
	// initiated and is never consumed.
	ErrProductInvalid = errors.New("product not purchasable")

	// ErrUpstreamUnavailable means the payment processor call failed.
	ErrUpstreamUnavailable = errors.New("payment processor unavailable")
)
