package ws

import (
	"testing"
	"time"

	"github.com/comus-party/justeprix/internal/testutil"
)

func newTestClient(hub *Hub, displayName string) *Client {
	// No underlying conn: hub tests only exercise the send channel
	return NewClient(hub, nil, hub.sessionID, displayName, nil, testutil.NopLogger())
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("session-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := newTestClient(hub, "Alice")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast([]byte(`{"type":"message"}`))

	select {
	case msg := <-client.send:
		if string(msg) != `{"type":"message"}` {
			t.Errorf("client received %q", string(msg))
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("session-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := newTestClient(hub, "Alice")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("session-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client1 := newTestClient(hub, "Alice")
	client2 := newTestClient(hub, "Bob")
	client3 := newTestClient(hub, "Carol")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	hub.Broadcast([]byte("payload"))

	for i, client := range []*Client{client1, client2, client3} {
		select {
		case msg := <-client.send:
			if string(msg) != "payload" {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), "payload")
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestHub_SendToTargetsOnlyNamedPlayer(t *testing.T) {
	hub := NewHub("session-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	alice := newTestClient(hub, "Alice")
	bob := newTestClient(hub, "Bob")
	hub.Register(alice)
	hub.Register(bob)

	time.Sleep(10 * time.Millisecond)

	hub.SendTo("Alice", []byte("private"))

	select {
	case msg := <-alice.send:
		if string(msg) != "private" {
			t.Errorf("alice received %q, want %q", string(msg), "private")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("alice did not receive directed message")
	}

	select {
	case msg := <-bob.send:
		t.Errorf("bob received directed message %q", string(msg))
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub("session-1", testutil.NopLogger())
	go hub.Run()

	client := newTestClient(hub, "Alice")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Close()
	time.Sleep(10 * time.Millisecond)

	if _, open := <-client.send; open {
		t.Error("client send channel still open after hub close")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub1 := manager.GetOrCreateHub("session-1")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	hub2 := manager.GetOrCreateHub("session-1")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned a different hub for the same session")
	}

	other := manager.GetOrCreateHub("session-2")
	if other == hub1 {
		t.Error("different sessions share a hub")
	}

	manager.RemoveHub("session-1")
	manager.RemoveHub("session-2")
}

func TestHubManager_GetHubMissing(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	if hub := manager.GetHub("nonexistent"); hub != nil {
		t.Error("GetHub returned a hub for an unknown session")
	}
}

func TestHubManager_RemoveHubClosesIt(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub := manager.GetOrCreateHub("session-1")
	client := newTestClient(hub, "Alice")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	manager.RemoveHub("session-1")
	time.Sleep(10 * time.Millisecond)

	if _, open := <-client.send; open {
		t.Error("client send channel still open after hub removal")
	}

	if manager.GetHub("session-1") != nil {
		t.Error("hub still registered after removal")
	}
}
