package gameserver

import (
	"testing"
	"time"
)

func newTestClient() *Client {
	return NewClient(fakeTransport{}, 4, time.Second)
}

func TestRegistryCountsAndBinding(t *testing.T) {
	cs := NewClients()
	a := newTestClient()
	b := newTestClient()

	cs.Register(a)
	cs.Register(b)
	if cs.Count() != 2 || cs.InWorldCount() != 0 {
		t.Fatalf("count = %d/%d, want 2 connected, 0 in world", cs.Count(), cs.InWorldCount())
	}

	a.Bind("acc", 7)
	cs.BindEntity(7, a)
	if cs.InWorldCount() != 1 {
		t.Errorf("in-world = %d, want 1", cs.InWorldCount())
	}
	if cs.ByEntity(7) != a {
		t.Error("ByEntity did not return the bound client")
	}
	if cs.ByEntity(99) != nil {
		t.Error("unknown entity id resolved to a client")
	}
}

func TestUnregisterGuardsEntityOwnership(t *testing.T) {
	cs := NewClients()
	old := newTestClient()
	old.Bind("acc", 7)
	cs.Register(old)
	cs.BindEntity(7, old)

	// Same entity id rebinds to a reconnecting client before the old
	// connection finishes tearing down.
	replacement := newTestClient()
	replacement.Bind("acc", 7)
	cs.Register(replacement)
	cs.BindEntity(7, replacement)

	cs.Unregister(old)
	if cs.ByEntity(7) != replacement {
		t.Error("stale unregister evicted the replacement binding")
	}

	cs.Unregister(replacement)
	if cs.ByEntity(7) != nil {
		t.Error("binding survived its owner's unregister")
	}
}

func TestBroadcastReachesOnlyInWorldClients(t *testing.T) {
	cs := NewClients()
	keyed := newTestClient()
	inWorld := newTestClient()
	inWorld.Bind("acc", 3)
	cs.Register(keyed)
	cs.Register(inWorld)
	cs.BindEntity(3, inWorld)

	cs.Broadcast([]byte{0xAA})

	if got := len(drainClient(inWorld)); got != 1 {
		t.Errorf("in-world client got %d packets, want 1", got)
	}
	if got := len(drainClient(keyed)); got != 0 {
		t.Errorf("keyed-only client got %d packets, want 0", got)
	}
}

func TestSendFullQueueDisconnects(t *testing.T) {
	c := newTestClient() // queue capacity 4, no writePump draining

	for i := 0; i < 4; i++ {
		if err := c.Send([]byte{byte(i)}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := c.Send([]byte{0xFF}); err == nil {
		t.Fatal("overflowing send succeeded")
	}
	if c.State() != StateDisconnected {
		t.Error("slow client not marked disconnected")
	}
	if err := c.Send([]byte{0x00}); err == nil {
		t.Error("send after disconnect succeeded")
	}
}
