package ws

import (
	"encoding/json"
	"log"
	"time"
)

// Hub is the broadcast engine. It fans payloads out to every registered
// connection, evicting connections that cannot be written to, and emits the
// join/leave presence events. It shares one Registry instance with the
// moderation path.
type Hub struct {
	registry *Registry
}

func NewHub(registry *Registry) *Hub {
	return &Hub{registry: registry}
}

// Register adds an authenticated client to the registry.
func (h *Hub) Register(c *Client) {
	h.registry.Add(c)
	if ident := c.Identity(); ident != nil {
		log.Printf("ws hub: user %s connected (%d online)", ident.Username, h.registry.Count())
	}
}

// Unregister removes a client and broadcasts user_left exactly once. Safe to
// call repeatedly; only the call that actually removes the client emits the
// event.
func (h *Hub) Unregister(c *Client) {
	if !h.registry.Remove(c) {
		return
	}
	ident := c.Identity()
	if ident == nil {
		return
	}
	log.Printf("ws hub: user %s disconnected (%d online)", ident.Username, h.registry.Count())
	h.Broadcast(newPresenceFrame(FrameUserLeft, ident.Ref()), nil)
}

// Broadcast delivers payload to every registered connection except exclude.
// Delivery is best effort per connection: a connection that cannot accept
// the frame is treated as dead and unregistered without aborting delivery to
// the rest.
func (h *Hub) Broadcast(payload any, exclude *Client) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}

	var failed []*Client
	for _, c := range h.registry.All() {
		if c == exclude {
			continue
		}
		if !c.trySend(data) {
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		log.Printf("ws hub: dropping unresponsive connection %s", c.id)
		h.Unregister(c)
		c.close()
	}
}

// DisconnectUser implements service.Disconnector. Every live connection of
// the user receives the notice as a kicked frame and is closed.
func (h *Hub) DisconnectUser(userID int64, notice string) {
	clients := h.registry.FindByUser(userID)
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(kickedFrame{Type: FrameKicked, Message: notice})
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}

	for _, c := range clients {
		select {
		case c.kick <- data:
		default:
			c.close()
		}
	}
}

// BroadcastAdmin implements service.Disconnector.
func (h *Hub) BroadcastAdmin(message string) {
	h.Broadcast(adminMessageFrame{
		Type:      FrameAdminMessage,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil)
}

// Online reports the current user snapshot.
func (h *Hub) Online() int {
	return h.registry.Count()
}
