package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/api/middleware"
	"github.com/stitts-dev/football-site/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// ClientMessage is an input event sent by the page.
type ClientMessage struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ServerMessage is pushed to the page. Type is "view" after every state change and
// "error" for a message the server could not apply.
type ServerMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// SessionHandler serves live players and schedule pages over websockets. Each
// connection owns one browsing session.
type SessionHandler struct {
	players  session.PlayerSource
	matches  session.MatchSource
	opts     session.Options
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

// NewSessionHandler creates the handler. opts supplies debounce and paging settings for
// every session; its ID is replaced per connection.
func NewSessionHandler(players session.PlayerSource, matches session.MatchSource, opts session.Options, origins []string, logger *logrus.Logger) *SessionHandler {
	opts.Logger = logger
	return &SessionHandler{
		players: players,
		matches: matches,
		opts:    opts,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

// HandlePlayers runs a players page session until the connection closes.
func (h *SessionHandler) HandlePlayers(c *gin.Context) {
	client := h.accept(c, "players")
	if client == nil {
		return
	}

	browser := session.NewPlayersBrowser(c.Request.Context(), h.players, h.sessionOptions(client), func(v session.PlayersView) {
		client.pushView(v)
	})
	defer browser.Close()

	browser.Start()
	client.readPump(map[string]func(string){
		"search":    browser.SetSearch,
		"league":    browser.SetLeague,
		"position":  browser.SetPosition,
		"load_more": func(string) { browser.LoadMore() },
	})
}

// HandleSchedule runs a schedule page session until the connection closes.
func (h *SessionHandler) HandleSchedule(c *gin.Context) {
	client := h.accept(c, "schedule")
	if client == nil {
		return
	}

	browser := session.NewScheduleBrowser(c.Request.Context(), h.matches, h.sessionOptions(client), func(v session.ScheduleView) {
		client.pushView(v)
	})
	defer browser.Close()

	browser.Start()
	client.readPump(map[string]func(string){
		"league": browser.SetLeague,
		"date":   browser.SetDate,
	})
}

func (h *SessionHandler) accept(c *gin.Context, view string) *wsClient {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return nil
	}

	client := &wsClient{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 16),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	client.logger = h.logger.WithFields(logrus.Fields{
		"client_id":  client.id,
		"session_id": middleware.SessionID(c),
		"view":       view,
	})
	client.logger.Info("Client connected")

	go client.writePump()
	return client
}

func (h *SessionHandler) sessionOptions(client *wsClient) session.Options {
	opts := h.opts
	opts.ID = client.id
	return opts
}

// wsClient is one websocket connection. Views are coalesced: only the latest unsent
// view is kept, so a slow reader never blocks the session.
type wsClient struct {
	id     string
	conn   *websocket.Conn
	logger *logrus.Entry

	send   chan []byte
	notify chan struct{}
	done   chan struct{}

	mu      sync.Mutex
	pending []byte
}

func (c *wsClient) pushView(data interface{}) {
	payload, err := json.Marshal(ServerMessage{Type: "view", Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		c.logger.WithError(err).Error("Failed to marshal view")
		return
	}

	c.mu.Lock()
	c.pending = payload
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *wsClient) pushError(message string) {
	payload, err := json.Marshal(ServerMessage{Type: "error", Error: message, Timestamp: time.Now().Unix()})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Dropping error message for slow client")
	}
}

func (c *wsClient) takePending() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = nil
	return p
}

// readPump applies incoming messages until the peer goes away, then stops the writer.
func (c *wsClient) readPump(handlers map[string]func(string)) {
	defer func() {
		close(c.done)
		c.conn.Close()
		c.logger.Info("Client disconnected")
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Error("WebSocket error")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.pushError("invalid message")
			continue
		}
		handle, ok := handlers[msg.Type]
		if !ok {
			c.pushError("unknown message type: " + msg.Type)
			continue
		}
		handle(msg.Value)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.notify:
			if payload := c.takePending(); payload != nil {
				if err := c.write(payload); err != nil {
					return
				}
			}

		case payload := <-c.send:
			if err := c.write(payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) write(payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin] || origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
