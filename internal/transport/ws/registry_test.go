package ws

import (
	"sync"
	"testing"

	"github.com/dkralj/banter/internal/domain"
)

func authedClient(userID int64, username string) *Client {
	c := newClient(nil, nil, "127.0.0.1")
	c.setAuthenticated(&domain.Identity{UserID: userID, Username: username})
	return c
}

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()
	c := authedClient(1, "alice")

	r.Add(c)
	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}

	if !r.Remove(c) {
		t.Fatal("Remove returned false for a present client")
	}
	if r.Count() != 0 {
		t.Fatalf("Count after remove = %d, want 0", r.Count())
	}

	// Removing an absent connection is a no-op.
	if r.Remove(c) {
		t.Fatal("second Remove returned true")
	}
}

func TestRegistryIgnoresAnonymousClients(t *testing.T) {
	r := NewRegistry()
	c := newClient(nil, nil, "127.0.0.1")

	r.Add(c)
	if r.Count() != 0 {
		t.Fatal("anonymous client was registered")
	}
}

func TestRegistryFindByUser(t *testing.T) {
	r := NewRegistry()
	a1 := authedClient(1, "alice")
	a2 := authedClient(1, "alice")
	b := authedClient(2, "bob")

	r.Add(a1)
	r.Add(a2)
	r.Add(b)

	// Unlimited concurrent sessions per user.
	if got := r.FindByUser(1); len(got) != 2 {
		t.Fatalf("FindByUser(1) returned %d connections, want 2", len(got))
	}
	if got := r.FindByUser(2); len(got) != 1 {
		t.Fatalf("FindByUser(2) returned %d connections, want 1", len(got))
	}
	if got := r.FindByUser(99); len(got) != 0 {
		t.Fatalf("FindByUser(99) returned %d connections, want 0", len(got))
	}
}

func TestRegistrySnapshotOnlineDeduplicatesUsers(t *testing.T) {
	r := NewRegistry()
	r.Add(authedClient(1, "alice"))
	r.Add(authedClient(1, "alice"))
	r.Add(authedClient(2, "bob"))

	snapshot := r.SnapshotOnline()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d users, want 2", len(snapshot))
	}

	seen := map[int64]string{}
	for _, ref := range snapshot {
		seen[ref.ID] = ref.Username
	}
	if seen[1] != "alice" || seen[2] != "bob" {
		t.Fatalf("snapshot = %v", seen)
	}
}

func TestRegistryRemoveClearsUserIndex(t *testing.T) {
	r := NewRegistry()
	c := authedClient(1, "alice")
	r.Add(c)
	r.Remove(c)

	if got := r.FindByUser(1); len(got) != 0 {
		t.Fatalf("FindByUser after remove returned %d connections", len(got))
	}
	if len(r.SnapshotOnline()) != 0 {
		t.Fatal("snapshot not empty after remove")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c := authedClient(userID, "user")
			r.Add(c)
			r.FindByUser(userID)
			r.SnapshotOnline()
			r.Remove(c)
		}(int64(i % 10))
	}
	wg.Wait()

	if r.Count() != 0 {
		t.Fatalf("Count after concurrent churn = %d, want 0", r.Count())
	}
}
