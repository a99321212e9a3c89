package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/repositories"
	"velvet/internal/utils/response"
)

type AgentHandler struct {
	agents repositories.AgentRepository
	log    zerolog.Logger
}

func NewAgentHandler(agents repositories.AgentRepository, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{agents: agents, log: log.With().Str("handler", "agents").Logger()}
}

// List returns the active voice agents.
func (h *AgentHandler) List(c *fiber.Ctx) error {
	agents, err := h.agents.ListActive(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("agent list failed")
		return response.ServerError(c, "failed to list agents")
	}
	return response.Success(c, "agents", fiber.Map{
		"agents": agents,
		"count":  len(agents),
	})
}
