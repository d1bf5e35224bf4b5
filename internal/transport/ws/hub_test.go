package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func recvFrame(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data := <-c.send:
		var frame map[string]any
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return frame
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no frame received")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	a := authedClient(1, "alice")
	b := authedClient(2, "bob")
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(pongFrame{Type: FramePong}, nil)

	if frame := recvFrame(t, a); frame["type"] != FramePong {
		t.Fatalf("a received %v", frame)
	}
	if frame := recvFrame(t, b); frame["type"] != FramePong {
		t.Fatalf("b received %v", frame)
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	a := authedClient(1, "alice")
	b := authedClient(2, "bob")
	c := authedClient(3, "carol")
	hub.Register(a)
	hub.Register(b)
	hub.Register(c)

	hub.Broadcast(pongFrame{Type: FramePong}, a)

	assertNoFrame(t, a)
	recvFrame(t, b)
	recvFrame(t, c)
}

func TestBroadcastOrderPerDestination(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	a := authedClient(1, "alice")
	hub.Register(a)

	hub.Broadcast(errorFrame{Type: FrameError, Message: "first"}, nil)
	hub.Broadcast(errorFrame{Type: FrameError, Message: "second"}, nil)

	if frame := recvFrame(t, a); frame["message"] != "first" {
		t.Fatalf("first frame = %v", frame)
	}
	if frame := recvFrame(t, a); frame["message"] != "second" {
		t.Fatalf("second frame = %v", frame)
	}
}

func TestBroadcastEvictsUnresponsiveClient(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	stuck := authedClient(1, "stuck")
	healthy := authedClient(2, "healthy")
	hub.Register(stuck)
	hub.Register(healthy)

	// Fill the stuck client's buffer so the next send fails.
	for stuck.trySend([]byte(`{}`)) {
	}

	hub.Broadcast(pongFrame{Type: FramePong}, nil)

	if registry.Count() != 1 {
		t.Fatalf("registry count = %d, want 1 after eviction", registry.Count())
	}
	if len(registry.FindByUser(1)) != 0 {
		t.Fatal("stuck client still registered")
	}

	// The healthy client got the broadcast and then stuck's user_left.
	if frame := recvFrame(t, healthy); frame["type"] != FramePong {
		t.Fatalf("healthy received %v", frame)
	}
	if frame := recvFrame(t, healthy); frame["type"] != FrameUserLeft {
		t.Fatalf("healthy received %v, want user_left", frame)
	}
}

func TestUnregisterBroadcastsUserLeftOnce(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	leaving := authedClient(1, "leaving")
	watcher := authedClient(2, "watcher")
	hub.Register(leaving)
	hub.Register(watcher)

	hub.Unregister(leaving)
	hub.Unregister(leaving)

	frame := recvFrame(t, watcher)
	if frame["type"] != FrameUserLeft {
		t.Fatalf("frame type = %v, want user_left", frame["type"])
	}
	user := frame["user"].(map[string]any)
	if user["id"].(float64) != 1 {
		t.Fatalf("user_left user = %v", user)
	}
	// Double close is a no-op: exactly one user_left.
	assertNoFrame(t, watcher)
}

func TestDisconnectUserDeliversKickNotice(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	target1 := authedClient(5, "target")
	target2 := authedClient(5, "target")
	bystander := authedClient(6, "bystander")
	hub.Register(target1)
	hub.Register(target2)
	hub.Register(bystander)

	hub.DisconnectUser(5, "You have been kicked from the chat")

	for _, c := range []*Client{target1, target2} {
		select {
		case data := <-c.kick:
			var frame map[string]any
			if err := json.Unmarshal(data, &frame); err != nil {
				t.Fatal(err)
			}
			if frame["type"] != FrameKicked {
				t.Fatalf("kick frame = %v", frame)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("target connection received no kick notice")
		}
	}

	select {
	case <-bystander.kick:
		t.Fatal("bystander was kicked")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDisconnectUnknownUserIsNoOp(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)
	hub.Register(authedClient(1, "alice"))

	// Must not panic or touch anyone else.
	hub.DisconnectUser(42, "nobody home")
}

func TestBroadcastAdmin(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)
	a := authedClient(1, "alice")
	hub.Register(a)

	hub.BroadcastAdmin("maintenance soon")

	frame := recvFrame(t, a)
	if frame["type"] != FrameAdminMessage || frame["message"] != "maintenance soon" {
		t.Fatalf("frame = %v", frame)
	}
	if frame["timestamp"] == "" {
		t.Fatal("admin message missing timestamp")
	}
}
