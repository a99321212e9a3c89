package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"velvet/internal/repositories"
	"velvet/internal/services/checkout"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
)

// eventCheckoutCompleted is the only event type that triggers
// reconciliation. Everything else is acknowledged and ignored so the
// sender never retries benign events forever.
const eventCheckoutCompleted = "checkout.session.completed"

var eventOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reconcile_events_total",
	Help: "Inbound payment events, labeled by handling outcome",
}, []string{"outcome"})

type service struct {
	verifier  SignatureVerifier
	purchases repositories.PurchaseRepository
	cache     CacheInvalidator
	notifier  Notifier
	log       zerolog.Logger
}

// NewService creates a new reconciliation service. notifier and cache may
// be nil.
func NewService(
	verifier SignatureVerifier,
	purchases repositories.PurchaseRepository,
	cache CacheInvalidator,
	notifier Notifier,
	log zerolog.Logger,
) Service {
	if verifier == nil {
		panic("signature verifier is required")
	}
	if purchases == nil {
		panic("purchase repository is required")
	}

	return &service{
		verifier:  verifier,
		purchases: purchases,
		cache:     cache,
		notifier:  notifier,
		log:       log.With().Str("component", "reconcile").Logger(),
	}
}

func (s *service) HandleEvent(ctx context.Context, payload []byte, sigHeader string) (*Result, error) {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		s.log.Warn().Err(err).Msg("rejected event with bad signature")
		eventOutcomes.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	if event.Type != eventCheckoutCompleted {
		s.log.Debug().Str("event_type", event.Type).Msg("ignoring event type")
		eventOutcomes.WithLabelValues(string(OutcomeIgnored)).Inc()
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.log.Error().Err(err).Str("event_id", event.ID).Msg("undecodable checkout session payload")
		eventOutcomes.WithLabelValues(string(OutcomeMalformed)).Inc()
		return &Result{Outcome: OutcomeMalformed}, nil
	}

	params, ok := s.extractParams(&session, event.ID)
	if !ok {
		eventOutcomes.WithLabelValues(string(OutcomeMalformed)).Inc()
		return &Result{Outcome: OutcomeMalformed}, nil
	}

	// The conditional update inside Settle is the idempotency boundary:
	// it, the ledger credit and the balance bump commit together or not
	// at all, so a crash between them cannot strand a paid-but-uncredited
	// purchase, and a redelivery after commit matches zero rows.
	settled, err := s.purchases.Settle(ctx, params)
	if err != nil {
		// Nothing committed; a retry by the sender is safe and useful.
		eventOutcomes.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("settlement failed: %w", err)
	}

	if !settled.Settled {
		s.log.Info().
			Str("purchase_id", params.PurchaseID).
			Str("event_id", event.ID).
			Msg("duplicate delivery, purchase already settled or unknown")
		eventOutcomes.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return &Result{Outcome: OutcomeDuplicate}, nil
	}

	purchase := settled.Purchase
	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, purchase.UserID); err != nil {
			s.log.Warn().Err(err).Uint("user_id", purchase.UserID).Msg("wallet cache invalidation failed")
		}
	}

	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("event_id", event.ID).
		Uint("user_id", purchase.UserID).
		Int64("credits", params.Credits).
		Int64("balance", settled.Entry.BalanceAfter).
		Msg("purchase settled")
	eventOutcomes.WithLabelValues(string(OutcomeSettled)).Inc()

	// Best-effort bookkeeping runs detached: its latency or failure
	// cannot reach the response already owed to the sender.
	if s.notifier != nil {
		go s.notifier.PurchaseCompleted(purchase)
	}

	return &Result{
		Outcome:  OutcomeSettled,
		Purchase: purchase,
		Balance:  settled.Entry.BalanceAfter,
	}, nil
}

// extractParams validates the echoed metadata. A malformed event can never
// become well-formed on redelivery, so failures here are logged and
// acknowledged rather than rejected.
func (s *service) extractParams(session *stripe.CheckoutSession, eventID string) (repositories.SettleParams, bool) {
	meta := session.Metadata

	purchaseID := meta[checkout.MetadataPurchaseID]
	userID := meta[checkout.MetadataUserID]
	creditsRaw := meta[checkout.MetadataCredits]
	if purchaseID == "" || userID == "" || creditsRaw == "" {
		s.log.Error().
			Str("event_id", eventID).
			Str("session_id", session.ID).
			Msg("event metadata missing purchase_id, user_id or credits")
		return repositories.SettleParams{}, false
	}

	credits, err := strconv.ParseInt(creditsRaw, 10, 64)
	if err != nil || credits <= 0 {
		s.log.Error().
			Str("event_id", eventID).
			Str("session_id", session.ID).
			Str("credits", creditsRaw).
			Msg("event metadata carries unusable credit amount")
		return repositories.SettleParams{}, false
	}

	params := repositories.SettleParams{
		PurchaseID: purchaseID,
		SessionID:  session.ID,
		Credits:    credits,
	}
	if session.PaymentIntent != nil {
		params.PaymentIntentID = session.PaymentIntent.ID
	}
	return params, true
}

// stripeVerifier is the production SignatureVerifier. ConstructEvent
// checks the HMAC against the raw body and enforces the default timestamp
// tolerance.
type stripeVerifier struct {
	secret string
}

// NewStripeVerifier builds a verifier for the given webhook signing secret.
func NewStripeVerifier(secret string) SignatureVerifier {
	return &stripeVerifier{secret: secret}
}

func (v *stripeVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, v.secret)
}
