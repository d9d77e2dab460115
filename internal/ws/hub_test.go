package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testClient(outletID uuid.UUID) *Client {
	return &Client{send: make(chan []byte, 16), outletID: outletID}
}

func recv(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcastScopedToOutlet(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outletA := uuid.New()
	outletB := uuid.New()
	a := testClient(outletA)
	b := testClient(outletB)
	hub.register <- a
	hub.register <- b

	hub.Broadcast(outletA, EventOrderCreated, map[string]string{"order_number": "DHB-001"})

	ev := recv(t, a)
	if ev.Type != EventOrderCreated {
		t.Errorf("event type: got %q, want %q", ev.Type, EventOrderCreated)
	}

	select {
	case data := <-b.send:
		t.Errorf("client in another outlet received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outlet := uuid.New()
	c := testClient(outlet)
	hub.register <- c
	hub.unregister <- c

	select {
	case _, open := <-c.send:
		if open {
			t.Error("send channel should be closed after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	// Broadcasting to an empty room must not block or panic.
	hub.Broadcast(outlet, EventTableUpdated, nil)
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outlet := uuid.New()
	slow := &Client{send: make(chan []byte), outletID: outlet}
	fast := testClient(outlet)
	hub.register <- slow
	hub.register <- fast

	// The slow client has no buffer and no reader, so the first
	// broadcast evicts it.
	hub.Broadcast(outlet, EventOrderUpdated, nil)

	if ev := recv(t, fast); ev.Type != EventOrderUpdated {
		t.Errorf("event type: got %q, want %q", ev.Type, EventOrderUpdated)
	}
	select {
	case _, open := <-slow.send:
		if open {
			t.Error("slow client send channel should be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("slow client was not dropped")
	}
}
