package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/auth"
)

// Feed connection timings. Pings go out before the read deadline lapses.
const (
	feedWriteTimeout = 10 * time.Second
	feedIdleTimeout  = 60 * time.Second
	feedPingInterval = feedIdleTimeout * 9 / 10
	feedReadLimit    = 1 << 10
	feedQueueLen     = 256
)

// Origins are enforced by the CORS middleware before the upgrade.
var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 10,
	WriteBufferSize: 4 << 10,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WSHandler serves the live decision feed.
type WSHandler struct {
	hub    *Hub
	jwtMgr *auth.JWTManager
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr}
}

// ServeWS handles GET /api/v1/ws. Browsers cannot set headers on the
// upgrade request, so the token may also come from ?token=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	raw, err := auth.TokenFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	claims, err := h.jwtMgr.ValidateToken(raw, auth.UseAccess)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	ws, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("caller", claims.Caller).Msg("Feed upgrade failed")
		return
	}

	c := &WSConn{conn: ws, caller: claims.Caller, send: make(chan []byte, feedQueueLen)}
	h.hub.Register(c)
	if hello, err := json.Marshal(WSEvent{Type: EventConnected, Data: map[string]string{"caller": c.caller}}); err == nil {
		c.send <- hello
	}

	go c.pumpOut()
	go c.pumpIn(h.hub)

	log.Info().Str("caller", c.caller).Int("connections", h.hub.ConnectionCount()).Msg("Feed client connected")
}

// pumpIn applies subscribe and unsubscribe requests until the peer goes
// away. Frames that do not decode are skipped.
func (c *WSConn) pumpIn(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("caller", c.caller).Msg("Feed client disconnected")
	}()

	c.conn.SetReadLimit(feedReadLimit)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(feedIdleTimeout)) }
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("caller", c.caller).Msg("Feed closed unexpectedly")
			}
			return
		}
		var msg ClientMessage
		if json.Unmarshal(frame, &msg) != nil || msg.MatchID == "" {
			continue
		}
		switch msg.Action {
		case "subscribe":
			hub.Subscribe(c, msg.MatchID)
		case "unsubscribe":
			hub.Unsubscribe(c, msg.MatchID)
		default:
			log.Debug().Str("caller", c.caller).Str("action", msg.Action).Msg("Unknown feed action")
		}
	}
}

// pumpOut writes one event per text frame and keeps the peer alive with
// pings. It exits when the hub closes the send queue.
func (c *WSConn) pumpOut() {
	ping := time.NewTicker(feedPingInterval)
	defer ping.Stop()
	defer c.conn.Close()

	write := func(kind int, payload []byte) error {
		c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		return c.conn.WriteMessage(kind, payload)
	}
	for {
		select {
		case event, open := <-c.send:
			if !open {
				write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, event) != nil {
				return
			}
		case <-ping.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}
