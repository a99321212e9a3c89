package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/services/catalog"
	"velvet/internal/utils/response"
)

type ProductHandler struct {
	svc catalog.Service
	log zerolog.Logger
}

func NewProductHandler(svc catalog.Service, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log.With().Str("handler", "products").Logger()}
}

// List returns the stored catalog, cheapest first.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.svc.List(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("product list failed")
		return response.ServerError(c, "failed to list products")
	}
	return response.Success(c, "products", fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

// Sync forces a catalog pull from the CRM. Admin only; the periodic
// background sync covers the normal case.
func (h *ProductHandler) Sync(c *fiber.Ctx) error {
	written, err := h.svc.Sync(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("catalog sync failed")
		return response.BadGateway(c, "catalog sync failed")
	}
	return response.Success(c, "catalog synced", fiber.Map{"updated": written})
}
