package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Game server event types.
const (
	EventTurn         = "turn"
	EventMatchStarted = "match_started"
	EventMatchEnded   = "match_ended"
)

// WSEvent is the envelope the game server pushes over the WebSocket.
type WSEvent struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id"`
	Data    json.RawMessage `json:"data"`
}

// TurnRequest is the payload of a turn event: the unit to move and the
// world as that unit's player sees it.
type TurnRequest struct {
	UnitID int64         `json:"unit_id"`
	World  tactics.World `json:"world"`
}

// MatchEnded is the payload of a match_ended event.
type MatchEnded struct {
	Winner int64 `json:"winner"`
	Turns  int   `json:"turns"`
}

// Client is an HTTP+WebSocket client for a single bot player.
type Client struct {
	name     string
	baseURL  string
	token    string
	playerID int64
	wsConn   *websocket.Conn
	events   chan WSEvent
	httpC    *http.Client
	mu       sync.Mutex
	closedWS bool
}

// NewClient creates a new bot client targeting the given server URL.
func NewClient(name, baseURL string) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		events:  make(chan WSEvent, 64),
		httpC:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the bot name.
func (c *Client) Name() string { return c.name }

// PlayerID returns the player id assigned when joining a match.
func (c *Client) PlayerID() int64 { return c.playerID }

// Login authenticates via the dev login endpoint.
func (c *Client) Login() error {
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.getJSON("/auth/dev?name="+url.QueryEscape(c.name), &tokens); err != nil {
		return fmt.Errorf("dev login: %w", err)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("dev login: empty access token")
	}
	c.token = tokens.AccessToken
	log.Debug().Str("bot", c.name).Msg("Bot logged in")
	return nil
}

// JoinMatch joins a match and records the assigned player id.
func (c *Client) JoinMatch(matchID string) error {
	var resp struct {
		PlayerID int64 `json:"player_id"`
	}
	if err := c.postJSON("/api/v1/matches/"+matchID+"/join", nil, &resp); err != nil {
		return err
	}
	c.playerID = resp.PlayerID
	return nil
}

// GetParams fetches the match constants.
func (c *Client) GetParams(matchID string) (*tactics.Params, error) {
	var p tactics.Params
	if err := c.getJSON("/api/v1/matches/"+matchID+"/params", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitAction sends the chosen action for one unit.
func (c *Client) SubmitAction(matchID string, unitID int64, a tactics.Action) error {
	path := "/api/v1/matches/" + matchID + "/units/" + strconv.FormatInt(unitID, 10) + "/action"
	return c.postJSON(path, a, nil)
}

// ConnectWS opens a WebSocket connection and starts listening for events.
func (c *Client) ConnectWS() error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws?token=" + url.QueryEscape(c.token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.wsConn = conn

	go c.readWSLoop()
	return nil
}

// SubscribeMatch sends a subscribe message for the given match.
func (c *Client) SubscribeMatch(matchID string) error {
	msg := map[string]string{"action": "subscribe", "match_id": matchID}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsConn.WriteJSON(msg)
}

// Events returns the channel of incoming WebSocket events.
func (c *Client) Events() <-chan WSEvent { return c.events }

// CloseWS closes the WebSocket connection.
func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) readWSLoop() {
	defer close(c.events)
	for {
		_, msg, err := c.wsConn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Str("bot", c.name).Msg("WS read error")
			}
			return
		}
		var event WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}
		c.events <- event
	}
}

func (c *Client) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postJSON sends payload as JSON and decodes the response into out when out is non-nil.
func (c *Client) postJSON(path string, payload any, out any) error {
	data := []byte("{}")
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
