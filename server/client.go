package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer (anchor batches can be large)
	maxMessageSize = 1024 * 1024

	// Outbound buffer per client
	sendBufferSize = 256
)

// Client is one WebSocket connection and the session behind it. It is the
// session's Sink.
type Client struct {
	server  *Server
	conn    *websocket.Conn
	session *session.Session
	sendMsg chan interface{}
	id      string
	limiter *rate.Limiter // nil = unlimited

	mu        sync.Mutex // guards closed against sends on a closed channel
	closed    bool
	closeOnce sync.Once
}

func newClient(s *Server, conn *websocket.Conn, id string) *Client {
	c := &Client{
		server:  s,
		conn:    conn,
		sendMsg: make(chan interface{}, sendBufferSize),
		id:      id,
	}
	s.mu.RLock()
	hoverRate := s.hoverRate
	s.mu.RUnlock()
	if hoverRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(hoverRate), hoverBurst)
	}

	cfg := s.sessionConfig()
	cfg.Sink = c
	cfg.Context = logger.WithSessionID(s.ctx, id)
	cfg.Verbosity = int(s.verbosity.Load())
	c.session = session.New(id, s.data, cfg)
	return c
}

// start launches the pumps once the hub has accepted the client
func (c *Client) start() {
	go c.writePump()
	go c.readPump()
}

// Publish implements session.Sink
func (c *Client) Publish(u session.Update) {
	c.sendJSON(u)
}

// sendJSON queues msg without blocking. A full buffer means the browser is
// not keeping up; the client is removed.
func (c *Client) sendJSON(msg interface{}) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	select {
	case c.sendMsg <- msg:
		c.mu.Unlock()
		return true
	default:
	}
	c.mu.Unlock()

	c.server.logger.Warnw("Failed to queue message (channel full)",
		logger.FieldClientID, c.id)
	c.server.removeSlowClient(c)
	return false
}

// close stops delivery to the client and detaches its session. Safe to
// call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.sendMsg)
		c.mu.Unlock()

		if c.session != nil {
			c.session.Close()
		}
	})
}

// readPump reads client messages and routes them to the session. The
// session's initial state is published first, from this goroutine.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.logger.Debugw("Read pump started", logger.FieldClientID, c.id)
	c.session.Start()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.server.logger.Warnw("Malformed client message",
				logger.FieldClientID, c.id,
				logger.FieldSize, len(data),
				logger.FieldError, err.Error())
			c.session.PublishError(errors.NewMalformedPayloadError("message is not valid JSON"))
			continue
		}

		c.routeMessage(&msg)
	}
}

func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
		websocket.CloseNormalClosure) {
		c.server.logger.Warnw("WebSocket read error",
			logger.FieldClientID, c.id,
			logger.FieldError, err.Error())
		return
	}
	c.server.logger.Debugw("WebSocket closed", logger.FieldClientID, c.id)
}

// writePump serializes queued messages onto the socket and keeps the
// connection alive with pings. A message that cannot be encoded is logged
// and skipped.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			return

		case msg, ok := <-c.sendMsg:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.server.logger.Errorw("Failed to encode outbound message",
					logger.FieldClientID, c.id,
					logger.FieldError, err.Error())
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.server.logger.Debugw("WebSocket write failed",
					logger.FieldClientID, c.id,
					logger.FieldError, err.Error())
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
