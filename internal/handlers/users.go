package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/repositories"
	"velvet/internal/services/wallet"
	"velvet/internal/utils/response"
)

type UserHandler struct {
	users  repositories.UserRepository
	wallet wallet.Service
	log    zerolog.Logger
}

func NewUserHandler(users repositories.UserRepository, walletSvc wallet.Service, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, wallet: walletSvc, log: log.With().Str("handler", "users").Logger()}
}

// Me returns the authenticated user's profile with the current balance.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "user not found")
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("user read failed")
		return response.ServerError(c, "failed to load user")
	}

	balance, err := h.wallet.GetBalance(c.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("balance read failed")
		return response.ServerError(c, "failed to load user")
	}

	return response.Success(c, "profile", fiber.Map{
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"avatar":      user.Avatar,
		"role":        user.Role,
		"balance":     balance,
	})
}
