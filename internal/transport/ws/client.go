package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/dkralj/banter/internal/domain"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	maxFrameSize = 4096
	sendBufSize  = 256
)

type connState int

const (
	stateAnonymous connState = iota
	stateAuthenticated
	stateClosed
)

// Client is one live connection. It is created anonymous on transport accept
// and moves one way: anonymous → authenticated → closed. All outbound frames
// go through the buffered send channel, which gives FIFO delivery per
// destination; a kick notice preempts the queue through its own channel.
type Client struct {
	id       uuid.UUID
	gw       *Gateway
	conn     *websocket.Conn
	remoteIP string

	mu       sync.Mutex
	state    connState
	identity *domain.Identity

	send      chan []byte
	kick      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	authTimer *time.Timer
}

func newClient(gw *Gateway, conn *websocket.Conn, remoteIP string) *Client {
	return &Client{
		id:       uuid.New(),
		gw:       gw,
		conn:     conn,
		remoteIP: remoteIP,
		send:     make(chan []byte, sendBufSize),
		kick:     make(chan []byte, 1),
		done:     make(chan struct{}),
	}
}

func (c *Client) State() connState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Identity() *domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// setAuthenticated promotes an anonymous connection. It fails once the
// connection is authenticated or closed; the handshake never runs twice.
func (c *Client) setAuthenticated(ident *domain.Identity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateAnonymous {
		return false
	}
	c.state = stateAuthenticated
	c.identity = ident
	if c.authTimer != nil {
		c.authTimer.Stop()
	}
	return true
}

// close tears the connection down. Safe to call any number of times.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = stateClosed
		c.mu.Unlock()

		close(c.done)
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "")
		}
	})
}

// trySend queues a frame without blocking. A full buffer means the peer has
// stopped draining; the caller treats that as a dead connection.
func (c *Client) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendJSON(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return false
	}
	return c.trySend(data)
}

// readPump reads frames from the socket and dispatches them in arrival
// order. It owns connection teardown: when it returns, the client is
// unregistered and closed.
func (c *Client) readPump() {
	defer func() {
		c.gw.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxFrameSize)

	for {
		var frame inboundFrame
		if err := wsjson.Read(context.Background(), c.conn, &frame); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: connection %s disconnected", c.id)
			} else {
				log.Printf("ws: read error on %s: %v", c.id, err)
			}
			return
		}
		c.gw.handleFrame(c, &frame)
	}
}

// writePump drains the send channel onto the socket and keeps the connection
// alive with pings. A kick notice is written out of band, then the
// connection is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error on %s: %v", c.id, err)
				return
			}

		case notice := <-c.kick:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			if err := c.conn.Write(ctx, websocket.MessageText, notice); err != nil {
				log.Printf("ws: kick write error on %s: %v", c.id, err)
			}
			cancel()
			return

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error on %s: %v", c.id, err)
				return
			}

		case <-c.done:
			return
		}
	}
}
