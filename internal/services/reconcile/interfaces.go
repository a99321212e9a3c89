package reconcile

import (
	"context"

	"velvet/internal/models"

	stripe "github.com/stripe/stripe-go/v72"
)

// Outcome classifies what an inbound event did. Every outcome is
// acknowledged with success to the sender; only a signature failure is
// rejected.
type Outcome string

const (
	// OutcomeSettled: the purchase moved to paid and the wallet was
	// credited, exactly once.
	OutcomeSettled Outcome = "settled"

	// OutcomeDuplicate: the purchase was already paid or unknown; the
	// event is a redelivery and changed nothing.
	OutcomeDuplicate Outcome = "duplicate"

	// OutcomeIgnored: a benign event type we do not reconcile.
	OutcomeIgnored Outcome = "ignored"

	// OutcomeMalformed: required metadata missing or unparseable.
	// Retrying cannot fix it, so it is dropped after logging.
	OutcomeMalformed Outcome = "malformed"
)

// Result reports how an event was handled. Purchase and Balance are set
// only for OutcomeSettled.
type Result struct {
	Outcome  Outcome
	Purchase *models.Purchase
	Balance  int64
}

// Service converts verified payment events into wallet credits.
type Service interface {
	// HandleEvent verifies and reconciles one inbound event. The payload
	// must be the raw request body; parsing it before verification would
	// break the signature. A non-nil error means the sender should
	// retry; every nil-error result must be acknowledged with success.
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) (*Result, error)
}

// SignatureVerifier authenticates a raw payload against its signature
// header. The production implementation wraps the processor SDK's
// constructor, which also enforces a bounded timestamp skew.
type SignatureVerifier interface {
	Verify(payload []byte, sigHeader string) (stripe.Event, error)
}

// Notifier receives the settled purchase for best-effort downstream
// bookkeeping. Implementations must never panic and must bound their own
// execution time; they are invoked on a detached goroutine.
type Notifier interface {
	PurchaseCompleted(purchase *models.Purchase)
}

// CacheInvalidator drops the cached wallet projection after a credit.
type CacheInvalidator interface {
	InvalidateWallet(ctx context.Context, userID uint) error
}
