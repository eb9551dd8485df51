package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/subcom/fleet/pkg/streaming"
)

const (
	outboxSize   = 10_000
	ackChSize    = 16
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// connection owns one websocket and its single writer goroutine.
// Records are dropped rather than blocking the caller when the outbox
// is full or the link is down.
type connection struct {
	mu     sync.Mutex
	conn   *ws.Conn
	outbox chan []byte
	acks   chan streaming.AckMessage
	stop   chan struct{}
	closed bool

	wsURL  string
	secret string

	// start-of-patrol message, replayed after every reconnect so the
	// server can re-associate the stream
	startReplay []byte

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan streaming.AckMessage, ackChSize),
		stop:   make(chan struct{}),
		logger: logger,
	}
}

// dial establishes the websocket and starts the reader and writer.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.swapConn(conn)

	go c.writeLoop()
	go c.readLoop()
	return nil
}

func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("bad websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.secret)
	u.RawQuery = q.Encode()

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return conn, nil
}

func (c *connection) swapConn(conn *ws.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *connection) currentConn() *ws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// writeLoop drains the outbox onto the websocket. It exits on shutdown
// or on the first write error, which hands off to reconnect.
func (c *connection) writeLoop() {
	for {
		select {
		case <-c.stop:
			return
		case data := <-c.outbox:
			conn := c.currentConn()
			if conn == nil {
				continue
			}

			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("Setting websocket write deadline failed", "error", err)
				go c.reconnect()
				return
			}
			if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.logger.Warn("Websocket write failed", "error", err)
				go c.reconnect()
				return
			}
		}
	}
}

// readLoop forwards server acks to the ack channel and discards
// anything else.
func (c *connection) readLoop() {
	for {
		conn := c.currentConn()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stop:
				return
			default:
			}
			c.logger.Warn("Websocket read failed", "error", err)
			go c.reconnect()
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != "ack" {
			c.logger.Debug("Ignoring non-ack message from server", "raw", string(message))
			continue
		}

		select {
		case c.acks <- ack:
		default:
			c.logger.Debug("Ack channel full, discarding ack", "for", ack.For)
		}
	}
}

// reconnect redials with exponential backoff, replays the cached
// start-of-patrol message, and restarts the loops.
func (c *connection) reconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	backoff := time.Second
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.stop:
			return
		default:
		}

		c.logger.Info("Redialing websocket", "attempt", attempt, "backoff", backoff)
		time.Sleep(backoff)
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Redial attempt failed", "attempt", attempt, "error", err)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		replay := c.startReplay
		c.mu.Unlock()

		if replay != nil && !c.replayStart(conn, replay) {
			continue
		}

		c.logger.Info("Websocket link restored", "attempt", attempt)
		go c.writeLoop()
		go c.readLoop()
		return
	}

	c.logger.Error("Giving up on websocket redial", "maxAttempts", maxReconnect)
}

func (c *connection) replayStart(conn *ws.Conn, replay []byte) bool {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Warn("Failed to set deadline for patrol replay", "error", err)
		_ = conn.Close()
		return false
	}
	if err := conn.WriteMessage(ws.TextMessage, replay); err != nil {
		c.logger.Warn("Failed to replay patrol start after reconnect", "error", err)
		_ = conn.Close()
		return false
	}
	return true
}

// send queues data for the writer without blocking; a full outbox
// drops the record.
func (c *connection) send(data []byte) {
	select {
	case c.outbox <- data:
	default:
		c.logger.Warn("Websocket outbox full, dropping record")
	}
}

// sendAndWait queues data and blocks until the server acks it or the
// timeout expires.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.acks:
			if ack.For == ackFor {
				return nil
			}
			// someone else's ack, keep waiting
		case <-timer.C:
			return fmt.Errorf("no ack for %q within %s", ackFor, timeout)
		case <-c.stop:
			return fmt.Errorf("connection closed before ack for %q", ackFor)
		}
	}
}

// close sends a close frame and stops the loops. Idempotent.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.stop)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
	return conn.Close()
}
