package ws

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"nhooyr.io/websocket"

	"github.com/dkralj/banter/internal/config"
	"github.com/dkralj/banter/internal/limiter"
	"github.com/dkralj/banter/internal/service"
	"github.com/dkralj/banter/pkg/validator"
)

// Gateway owns the wire protocol: it accepts connections anonymous, runs the
// auth handshake, and routes authenticated frames into the services.
type Gateway struct {
	hub      *Hub
	auth     *service.AuthService
	messages *service.MessageService
	limiter  *limiter.SlidingWindow

	authLimit    int
	messageLimit int
	window       time.Duration
	authTimeout  time.Duration
	historyPage  int
	maxMessage   int
}

func NewGateway(hub *Hub, auth *service.AuthService, messages *service.MessageService, rl *limiter.SlidingWindow, cfg *config.Config) *Gateway {
	return &Gateway{
		hub:          hub,
		auth:         auth,
		messages:     messages,
		limiter:      rl,
		authLimit:    cfg.RateLimitAuth,
		messageLimit: cfg.RateLimitMessages,
		window:       cfg.RateLimitWindow,
		authTimeout:  cfg.AuthTimeout,
		historyPage:  cfg.HistoryPageSize,
		maxMessage:   cfg.MaxMessageLength,
	}
}

// ServeWS upgrades the request and starts the connection pumps. The
// connection stays anonymous until a valid auth frame arrives; one that
// never authenticates is closed after the auth timeout.
func (g *Gateway) ServeWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Printf("ws: accept error: %v", err)
			return
		}

		c := newClient(g, conn, remoteIP(r))
		c.authTimer = time.AfterFunc(g.authTimeout, func() {
			if c.State() == stateAnonymous {
				log.Printf("ws: closing %s, no auth within %s", c.id, g.authTimeout)
				c.close()
			}
		})

		go c.writePump()
		go c.readPump()
	}
}

// handleFrame dispatches one inbound frame. Frames of a single connection
// are handled serially in arrival order by the read pump.
func (g *Gateway) handleFrame(c *Client, f *inboundFrame) {
	switch f.Type {
	case FrameAuth:
		g.handleAuth(c, f)
	case FrameMessage:
		g.handleMessage(c, f)
	case FrameTyping:
		g.handleTyping(c, f)
	case FramePing:
		c.sendJSON(pongFrame{Type: FramePong})
	default:
		c.sendJSON(newErrorFrame("Unknown message type"))
	}
}

// handleAuth runs the handshake: resolve token, check ban, rate limit,
// register, then ack with history and the online snapshot. Any failure
// leaves the connection anonymous and open.
func (g *Gateway) handleAuth(c *Client, f *inboundFrame) {
	if c.State() != stateAnonymous {
		c.sendJSON(newErrorFrame("Already authenticated"))
		return
	}
	if f.Token == "" {
		c.sendJSON(newErrorFrame("Authentication token required"))
		return
	}

	ctx := context.Background()
	ident, err := g.auth.ResolveToken(ctx, f.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			c.sendJSON(newErrorFrame("Invalid authentication token"))
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrForbidden):
			c.sendJSON(newErrorFrame("User not found or banned"))
		default:
			log.Printf("ws: resolving token: %v", err)
			c.sendJSON(newErrorFrame("Authentication failed"))
		}
		return
	}

	if !g.limiter.Allow(c.remoteIP+"_auth", g.authLimit, g.window) {
		c.sendJSON(newErrorFrame("Too many authentication attempts"))
		return
	}

	if !c.setAuthenticated(ident) {
		c.sendJSON(newErrorFrame("Already authenticated"))
		return
	}
	g.hub.Register(c)

	c.sendJSON(authSuccessFrame{Type: FrameAuthSuccess, User: ident})

	history, err := g.messages.History(ctx, g.historyPage, 0)
	if err != nil {
		log.Printf("ws: loading history: %v", err)
		c.sendJSON(newErrorFrame("Failed to load message history"))
	} else {
		c.sendJSON(messageHistoryFrame{Type: FrameMessageHistory, Messages: history})
	}

	c.sendJSON(onlineUsersFrame{Type: FrameOnlineUsers, Users: g.hub.registry.SnapshotOnline()})

	g.hub.Broadcast(newPresenceFrame(FrameUserJoined, ident.Ref()), c)
}

func (g *Gateway) handleMessage(c *Client, f *inboundFrame) {
	ident := c.Identity()
	if ident == nil {
		c.sendJSON(newErrorFrame("Not authenticated"))
		return
	}

	if !g.limiter.Allow(c.remoteIP+"_message", g.messageLimit, g.window) {
		c.sendJSON(newErrorFrame("Rate limit exceeded"))
		return
	}

	if errs := validator.ValidateMessage(f.Content, g.maxMessage); errs.HasErrors() {
		c.sendJSON(newErrorFrame(errs["content"]))
		return
	}
	content := strings.TrimSpace(f.Content)

	messageType := f.MessageType
	if messageType == "" {
		messageType = "text"
	}

	msg, err := g.messages.Create(context.Background(), ident.UserID, ident.Username, content, messageType, nil, true)
	if err != nil {
		log.Printf("ws: saving message: %v", err)
		c.sendJSON(newErrorFrame("Failed to save message"))
		return
	}

	// The sender receives its own persisted message too, so every client
	// renders the same authoritative row.
	g.hub.Broadcast(newMessageFrame{Type: FrameNewMessage, Message: msg}, nil)
}

func (g *Gateway) handleTyping(c *Client, f *inboundFrame) {
	ident := c.Identity()
	if ident == nil {
		return
	}
	g.hub.Broadcast(typingFrame{
		Type:     FrameTyping,
		User:     ident.Ref(),
		IsTyping: f.IsTyping,
	}, c)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
