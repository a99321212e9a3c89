package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/services/wallet"
	"velvet/internal/utils/response"
)

type WalletHandler struct {
	svc wallet.Service
	log zerolog.Logger
}

func NewWalletHandler(svc wallet.Service, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{svc: svc, log: log.With().Str("handler", "wallet").Logger()}
}

// GetBalance returns the authenticated user's credit balance. Users
// without a wallet row yet read as zero.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	balance, err := h.svc.GetBalance(c.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("balance read failed")
		return response.ServerError(c, "failed to read balance")
	}

	return response.Success(c, "balance", fiber.Map{"balance": balance})
}

// GetHistory returns the user's ledger entries, newest first.
func (h *WalletHandler) GetHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	entries, err := h.svc.History(c.Context(), userID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("history read failed")
		return response.ServerError(c, "failed to read history")
	}

	return response.Success(c, "wallet history", fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}
