// Package relay is a stateless byte pipe between a browser websocket and
// the conversational-voice provider. It forwards frames verbatim in both
// directions and closes one side when the other closes; no business logic
// lives here.
package relay

import (
	"net/http"
	"net/url"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeDeadline = 10 * time.Second

// Config holds the upstream voice endpoint settings.
type Config struct {
	UpstreamURL      string // wss endpoint, agent id is appended as query
	APIKey           string
	HandshakeTimeout time.Duration
}

// conn is the subset shared by the inbound (fasthttp) and outbound
// (gorilla) websocket connections.
type conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Bridge dials the voice provider for the given agent and pumps frames
// both ways until either side closes. It blocks until the bridge tears
// down.
func Bridge(client *fiberws.Conn, agentID string, cfg Config, log zerolog.Logger) {
	log = log.With().Str("component", "relay").Str("agent_id", agentID).Logger()

	if agentID == "" {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "agent id missing"),
			time.Now().Add(writeDeadline))
		client.Close()
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	header := http.Header{}
	header.Set("xi-api-key", cfg.APIKey)

	target := cfg.UpstreamURL + "?agent_id=" + url.QueryEscape(agentID)
	upstream, resp, err := dialer.Dial(target, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		log.Error().Err(err).Int("status", status).Msg("upstream dial failed")
		client.Close()
		return
	}

	log.Info().Msg("voice bridge established")

	done := make(chan struct{}, 2)
	go pump(client, upstream, done)
	go pump(upstream, client, done)

	// First side to fail ends the bridge; closing both connections
	// unblocks the surviving pump.
	<-done
	upstream.Close()
	client.Close()
	<-done

	log.Info().Msg("voice bridge closed")
}

func pump(src, dst conn, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		msgType, data, err := src.ReadMessage()
		if err != nil {
			return
		}
		dst.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := dst.WriteMessage(msgType, data); err != nil {
			return
		}
	}
}
