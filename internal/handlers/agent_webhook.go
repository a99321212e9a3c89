package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"velvet/internal/models"
	"velvet/internal/repositories"
	"velvet/internal/utils/response"
)

// AgentWebhookHandler ingests the CRM's custom-object webhook that keeps
// the voice agent roster in sync. Authenticity is a shared secret in the
// query string, matching what the CRM can be configured to send.
type AgentWebhookHandler struct {
	agents repositories.AgentRepository
	secret string
	log    zerolog.Logger
}

func NewAgentWebhookHandler(agents repositories.AgentRepository, secret string, log zerolog.Logger) *AgentWebhookHandler {
	return &AgentWebhookHandler{
		agents: agents,
		secret: secret,
		log:    log.With().Str("handler", "agent_webhook").Logger(),
	}
}

type agentWebhookPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ImageURL      string `json:"imageUrl"`
	RatePerMinute int64  `json:"ratePerMinute"`
	VoiceAgentID  string `json:"voiceAgentId"`
	Status        string `json:"status"`
}

func (h *AgentWebhookHandler) Handle(c *fiber.Ctx) error {
	if h.secret != "" && c.Query("token") != h.secret {
		return response.Unauthorized(c)
	}

	var payload agentWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if payload.ID == "" || payload.Name == "" {
		return response.BadRequest(c, "id and name are required")
	}

	agent := &models.Agent{
		RecordID:      payload.ID,
		Name:          payload.Name,
		ImageURL:      payload.ImageURL,
		RatePerMinute: payload.RatePerMinute,
		VoiceAgentID:  payload.VoiceAgentID,
		Status:        payload.Status,
	}
	if agent.RatePerMinute <= 0 {
		agent.RatePerMinute = 1
	}
	if agent.Status == "" {
		agent.Status = models.AgentStatusActive
	}

	if err := h.agents.Upsert(c.Context(), agent); err != nil {
		h.log.Error().Err(err).Str("record_id", payload.ID).Msg("agent upsert failed")
		return response.ServerError(c, "failed to store agent")
	}

	h.log.Info().Str("record_id", payload.ID).Str("status", agent.Status).Msg("agent synced")
	return response.Success(c, "agent synced", fiber.Map{"recordId": agent.RecordID})
}
