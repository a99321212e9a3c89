package checkout

import (
	"context"

	stripe "github.com/stripe/stripe-go/v72"
)

// Service creates hosted-checkout sessions for catalog products.
type Service interface {
	// CreateSession creates a Purchase for the user/product pair and
	// returns the processor's redirect URL.
	CreateSession(ctx context.Context, userID uint, productID string) (string, error)
}

// StripeClient is the slice of the processor API the initiator needs.
// Production wraps the stripe-go client; tests substitute a double.
type StripeClient interface {
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}
