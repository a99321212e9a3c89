package handlers

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"velvet/internal/relay"
)

// VoiceHandler upgrades the browser connection and hands it to the relay
// bridge.
type VoiceHandler struct {
	cfg relay.Config
	log zerolog.Logger
}

func NewVoiceHandler(cfg relay.Config, log zerolog.Logger) *VoiceHandler {
	return &VoiceHandler{cfg: cfg, log: log}
}

// Upgrade gates the route to websocket requests.
func (h *VoiceHandler) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Stream bridges the client to the voice provider for the requested
// agent.
func (h *VoiceHandler) Stream() fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		relay.Bridge(conn, conn.Query("agent_id"), h.cfg, h.log)
	})
}
