package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/services/billing"
	"velvet/internal/utils/response"
)

type CallHandler struct {
	svc billing.Service
	log zerolog.Logger
}

func NewCallHandler(svc billing.Service, log zerolog.Logger) *CallHandler {
	return &CallHandler{svc: svc, log: log.With().Str("handler", "calls").Logger()}
}

type recordCallRequest struct {
	AgentID   string    `json:"agentId"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// Record bills a finished call and returns the log entry.
func (h *CallHandler) Record(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var req recordCallRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if req.AgentID == "" || req.StartedAt.IsZero() || req.EndedAt.IsZero() {
		return response.BadRequest(c, "agentId, startedAt and endedAt are required")
	}

	call, err := h.svc.RecordCall(c.Context(), userID, req.AgentID, req.StartedAt, req.EndedAt)
	switch {
	case errors.Is(err, billing.ErrInvalidCallSpan):
		return response.BadRequest(c, "call end must be after start")
	case errors.Is(err, billing.ErrAgentUnavailable):
		return response.NotFound(c, "agent not available")
	case errors.Is(err, billing.ErrInsufficientBalance):
		return response.PaymentRequired(c, "insufficient credits")
	case err != nil:
		h.log.Error().Err(err).Uint("user_id", userID).Msg("call billing failed")
		return response.ServerError(c, "failed to record call")
	}

	return response.Success(c, "call recorded", fiber.Map{"call": call})
}

// List returns the user's call history, newest first.
func (h *CallHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	calls, err := h.svc.ListCalls(c.Context(), userID, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("call list failed")
		return response.ServerError(c, "failed to list calls")
	}

	return response.Success(c, "calls", fiber.Map{
		"calls": calls,
		"count": len(calls),
	})
}
