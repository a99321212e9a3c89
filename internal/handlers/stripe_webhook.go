package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/services/reconcile"
	"velvet/internal/utils/response"
)

// StripeWebhookHandler terminates the payment processor's event delivery.
// The route carries no auth middleware; authenticity comes from the
// signature check inside the reconciliation service.
type StripeWebhookHandler struct {
	svc reconcile.Service
	log zerolog.Logger
}

func NewStripeWebhookHandler(svc reconcile.Service, log zerolog.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{svc: svc, log: log.With().Str("handler", "stripe_webhook").Logger()}
}

// Handle acknowledges one event. The raw body goes to the service
// unparsed; decoding it first would invalidate the signature. Status
// codes are the sender's retry contract: 400 tells it the delivery is
// unauthenticated and will never succeed, 500 asks it to redeliver, and
// 200 settles the delivery for good, including duplicates.
func (h *StripeWebhookHandler) Handle(c *fiber.Ctx) error {
	result, err := h.svc.HandleEvent(c.Context(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, reconcile.ErrBadSignature) {
			h.log.Warn().Err(err).Msg("webhook signature rejected")
			return response.BadRequest(c, "invalid signature")
		}
		// Nothing was committed; a redelivery is safe and wanted.
		h.log.Error().Err(err).Msg("webhook settlement failed")
		return response.ServerError(c, "settlement failed")
	}

	return c.JSON(fiber.Map{
		"received": true,
		"outcome":  result.Outcome,
	})
}
