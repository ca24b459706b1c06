package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Spectators never send game traffic, only control frames
	maxInboundSize = 512
)

// Event names pushed to spectators
const (
	EventBoardUpdate    = "board_update"
	EventTurnReport     = "turn_report"
	EventActionQueued   = "action_queued"
	EventSessionDeleted = "session_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is one JSON frame sent to the spectators of a session
type Message struct {
	SessionID string             `json:"session_id"`
	Event     string             `json:"event"`
	Board     *service.BoardView `json:"board,omitempty"`
	Report    *engine.TurnReport `json:"report,omitempty"`
	Data      interface{}        `json:"data,omitempty"`
}

// Client is one spectator connection attached to a session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// room holds the spectators of one session
type room map[*Client]struct{}

// Hub fans session events out to the spectators watching that session.
// Registration and delivery run on the Run goroutine; ClientCount may be
// called from anywhere.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]room

	outbox chan *Message
	joins  chan *Client
	leaves chan *Client
	done   chan struct{}

	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]room),
		outbox: make(chan *Message, engine.WebSocketBufferSize),
		joins:  make(chan *Client),
		leaves: make(chan *Client),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "WebSocketHub").Logger(),
	}
}

// Run delivers events until ctx is cancelled, then disconnects everyone
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case c := <-h.joins:
			h.join(c)
		case c := <-h.leaves:
			h.leave(c)
		case m := <-h.outbox:
			h.deliver(m)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// A non-nil snapshot is sent first so a new spectator sees the board
// without waiting for the next turn.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, snapshot *service.BoardView) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}

	c := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}
	if snapshot != nil {
		if frame, err := json.Marshal(&Message{SessionID: sessionID, Event: EventBoardUpdate, Board: snapshot}); err == nil {
			c.send <- frame
		}
	}

	select {
	case h.joins <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writeLoop()
	go c.readLoop()
}

func (h *Hub) BroadcastBoard(sessionID string, board *service.BoardView) {
	h.post(&Message{SessionID: sessionID, Event: EventBoardUpdate, Board: board})
}

func (h *Hub) BroadcastReport(sessionID string, report *engine.TurnReport) {
	h.post(&Message{SessionID: sessionID, Event: EventTurnReport, Report: report})
}

// BroadcastEvent sends an arbitrary event with a JSON payload
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.post(&Message{SessionID: sessionID, Event: event, Data: data})
}

// ClientCount returns the number of spectators of a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[strings.ToLower(sessionID)])
}

// post drops the message when the outbox is full so game handlers never
// wait on spectators
func (h *Hub) post(m *Message) {
	select {
	case h.outbox <- m:
	default:
		h.logger.Warn().Str("session", m.SessionID).Str("event", m.Event).Msg("outbox full, message dropped")
	}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k := strings.ToLower(c.sessionID)
	r := h.rooms[k]
	if r == nil {
		r = make(room)
		h.rooms[k] = r
	}
	r[c] = struct{}{}
	h.logger.Debug().Str("session", c.sessionID).Int("spectators", len(r)).Msg("spectator joined")
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evict(c)
}

// evict closes c's outbound queue once. Callers hold h.mu.
func (h *Hub) evict(c *Client) {
	k := strings.ToLower(c.sessionID)
	r := h.rooms[k]
	if _, ok := r[c]; !ok {
		return
	}
	delete(r, c)
	close(c.send)
	if len(r) == 0 {
		delete(h.rooms, k)
	}
	h.logger.Debug().Str("session", c.sessionID).Int("spectators", len(r)).Msg("spectator left")
}

// deliver encodes once and queues the frame for every spectator of the
// session. A spectator whose queue is full is disconnected.
func (h *Hub) deliver(m *Message) {
	frame, err := json.Marshal(m)
	if err != nil {
		h.logger.Error().Err(err).Str("event", m.Event).Msg("failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[strings.ToLower(m.SessionID)] {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn().Str("session", c.sessionID).Msg("slow spectator disconnected")
			h.evict(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.rooms {
		for c := range r {
			h.evict(c)
		}
	}
}

// readLoop only services pongs and notices the peer going away
func (c *Client) readLoop() {
	defer func() {
		select {
		case c.hub.leaves <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("session", c.sessionID).Msg("spectator read failed")
			}
			return
		}
	}
}

// writeLoop sends queued frames and keepalive pings until the hub closes
// the queue or a write fails
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, open := <-c.send:
			if !open {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if c.write(websocket.TextMessage, frame) != nil {
				return
			}
		case <-ping.C:
			if c.write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}
