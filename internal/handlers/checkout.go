package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/services/checkout"
	"velvet/internal/utils/response"
)

type CheckoutHandler struct {
	svc checkout.Service
	log zerolog.Logger
}

func NewCheckoutHandler(svc checkout.Service, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: log.With().Str("handler", "checkout").Logger()}
}

type createCheckoutRequest struct {
	ProductID string `json:"productId"`
}

// CreateSession starts a hosted checkout for the authenticated user and
// returns the redirect URL.
func (h *CheckoutHandler) CreateSession(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == "" {
		return response.BadRequest(c, "productId is required")
	}

	url, err := h.svc.CreateSession(c.Context(), userID, req.ProductID)
	switch {
	case errors.Is(err, checkout.ErrProductInvalid):
		return response.BadRequest(c, "product is not purchasable")
	case errors.Is(err, checkout.ErrUpstreamUnavailable):
		return response.BadGateway(c, "payment provider unavailable")
	case err != nil:
		h.log.Error().Err(err).Uint("user_id", userID).Msg("checkout session failed")
		return response.ServerError(c, "failed to create checkout session")
	}

	return response.Success(c, "checkout session created", fiber.Map{"url": url})
}
