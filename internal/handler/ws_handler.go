package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/internal/session"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // Must be less than pongWait
	maxMessageSize = 65536
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware; tighten in production
	},
}

// wsConn adapts one websocket connection to the session transport. Outbound
// messages go through a buffered channel and a full buffer drops the
// message, so a slow client can never stall the coordinator.
type wsConn struct {
	conn     *websocket.Conn
	callsign string
	send     chan []byte
	done     chan struct{}
	once     sync.Once
}

func newWSConn(conn *websocket.Conn, callsign string) *wsConn {
	return &wsConn{
		conn:     conn,
		callsign: callsign,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Send implements session.Transport.
func (c *wsConn) Send(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("callsign", c.callsign).Str("type", msg.Type()).Msg("Dropping WebSocket message, buffer full")
	}
	return nil
}

// Close implements session.Transport. It stops the write pump, which
// flushes queued messages and closes the socket.
func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// WSHandler upgrades game clients and binds them to the session manager.
type WSHandler struct {
	manager *session.Manager
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(manager *session.Manager) *WSHandler {
	return &WSHandler{manager: manager}
}

// ServeWS handles GET /ws: it upgrades to WebSocket and seats the client.
// Connect metadata rides in the query string (callsign, clientVersion,
// expectedServerVersion) because browser clients can't send custom headers.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	callsign := r.URL.Query().Get("callsign")
	clientVersion := r.URL.Query().Get("clientVersion")
	expected, err := strconv.Atoi(r.URL.Query().Get("expectedServerVersion"))
	if err != nil {
		expected = -1 // missing or garbled, attach rejects it below
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := newWSConn(conn, callsign)
	go h.writePump(c)

	if callsign == "" {
		h.reject(c, "callsign required")
		return
	}

	info := session.ConnectInfo{
		Callsign:              callsign,
		ClientVersion:         clientVersion,
		ExpectedServerVersion: expected,
		RemoteAddr:            r.RemoteAddr,
	}
	sess, player, err := h.manager.Attach(info, c)
	if err != nil {
		h.reject(c, err.Error())
		return
	}

	go h.readPump(c, sess, player)
	log.Info().
		Str("player", string(player)).
		Str("callsign", callsign).
		Str("clientVersion", clientVersion).
		Msg("WebSocket client connected")
}

// reject answers a doomed connect with one INVALID_OPERATION, then closes.
func (h *WSHandler) reject(c *wsConn, reason string) {
	c.Send(protocol.InvalidOperation{Reason: reason})
	c.Close()
	log.Warn().Str("callsign", c.callsign).Str("reason", reason).Msg("WebSocket connect rejected")
}

// readPump reads client messages. Only ACTION is legal inbound; anything
// else, including undecodable bytes, is a protocol error that closes this
// connection and leaves the opponent's untouched.
func (h *WSHandler) readPump(c *wsConn, sess *session.Session, player gridwar.PlayerID) {
	defer func() {
		sess.Disconnect(player)
		c.Close()
		c.conn.Close()
		log.Info().Str("player", string(player)).Str("callsign", c.callsign).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("player", string(player)).Msg("WebSocket unexpected close")
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("player", string(player)).Msg("Malformed client message, closing connection")
			return
		}
		action, ok := msg.(protocol.Action)
		if !ok {
			log.Warn().Str("player", string(player)).Str("type", msg.Type()).Msg("Unexpected client message type, closing connection")
			return
		}
		sess.Submit(player, toActionInputs(action))
	}
}

// writePump writes queued messages and keepalive pings. Each envelope goes
// out as its own frame so clients can parse frame-for-frame. On Close it
// flushes the queue before the close frame; END_GAME always reaches the
// client.
func (h *WSHandler) writePump(c *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			for {
				select {
				case data := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func toActionInputs(a protocol.Action) []gridwar.ActionInput {
	inputs := make([]gridwar.ActionInput, 0, len(a.Actions))
	for _, item := range a.Actions {
		inputs = append(inputs, gridwar.ActionInput{UnitID: item.UnitID, Direction: item.Direction})
	}
	return inputs
}
