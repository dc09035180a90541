package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// clientVersion is the version string bots advertise at connect time. The
// server logs it; compatibility is decided by expectedServerVersion.
const clientVersion = "bot-0.1"

// Client is a WebSocket client for a single bot player. Connect dials the
// server's /ws endpoint with the callsign handshake; decoded server
// messages arrive on Events until the connection drops.
type Client struct {
	callsign string
	conn     *websocket.Conn
	events   chan protocol.Message

	mu     sync.Mutex
	closed bool
}

// NewClient creates a bot client that will connect under the given callsign.
func NewClient(callsign string) *Client {
	return &Client{
		callsign: callsign,
		events:   make(chan protocol.Message, 64),
	}
}

// Callsign returns the callsign the client connects under.
func (c *Client) Callsign() string { return c.callsign }

// Connect dials the server's /ws endpoint and starts the read loop. The
// base URL is the server's http(s) address; the scheme is rewritten for
// the WebSocket dial.
func (c *Client) Connect(baseURL string) error {
	q := url.Values{}
	q.Set("callsign", c.callsign)
	q.Set("clientVersion", clientVersion)
	q.Set("expectedServerVersion", strconv.Itoa(protocol.MajorVersion))

	wsURL := strings.Replace(strings.TrimRight(baseURL, "/"), "http", "ws", 1) + "/ws?" + q.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.conn = conn

	go c.readLoop()
	return nil
}

// Events returns the channel of decoded server messages. It closes when
// the connection drops.
func (c *Client) Events() <-chan protocol.Message { return c.events }

// SendActions submits the player's actions for the current turn. An empty
// set is a legal submission that holds every pawn.
func (c *Client) SendActions(player gridwar.PlayerID, actions []gridwar.ActionInput) error {
	items := make([]protocol.ActionItem, 0, len(actions))
	for _, a := range actions {
		items = append(items, protocol.ActionItem{UnitID: a.UnitID, Direction: a.Direction})
	}
	data, err := protocol.Encode(protocol.Action{PlayerID: string(player), Actions: items})
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return fmt.Errorf("client is closed")
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the WebSocket connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil && !c.closed {
		c.closed = true
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed {
				log.Debug().Err(err).Str("callsign", c.callsign).Msg("WS read error")
			}
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Debug().Err(err).Str("callsign", c.callsign).Msg("Undecodable server message, skipping")
			continue
		}
		c.events <- msg
	}
}
