package handler

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func newTestConn(caller string) *WSConn {
	return &WSConn{
		conn:   nil, // hub tests never touch the socket
		caller: caller,
		send:   make(chan []byte, 256),
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := newTestConn("viewer-1")

	hub.Register(c)
	if hub.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", hub.ConnectionCount())
	}

	hub.Unregister(c)
	hub.Unregister(c) // second call must not close the queue again
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections, got %d", hub.ConnectionCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("expected send queue closed after unregister")
	}
}

func TestHubSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	c := newTestConn("viewer-1")
	hub.Register(c)
	defer hub.Unregister(c)

	hub.Subscribe(c, "m1")
	hub.Subscribe(c, "m1")
	if n := hub.MatchSubscriberCount("m1"); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}

	hub.Unsubscribe(c, "m1")
	if n := hub.MatchSubscriberCount("m1"); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
}

func TestHubSubscribeUnregisteredIgnored(t *testing.T) {
	hub := NewHub()
	hub.Subscribe(newTestConn("ghost"), "m1")
	if n := hub.MatchSubscriberCount("m1"); n != 0 {
		t.Errorf("expected unregistered connection ignored, got %d subscribers", n)
	}
}

func TestHubBroadcastMatchEvent(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn("viewer-1")
	c2 := newTestConn("viewer-2")
	c3 := newTestConn("viewer-3")
	for _, c := range []*WSConn{c1, c2, c3} {
		hub.Register(c)
		defer hub.Unregister(c)
	}
	hub.Subscribe(c1, "m1")
	hub.Subscribe(c2, "m1")
	hub.Subscribe(c3, "m2")

	hub.BroadcastMatchEvent("m1", "decision", map[string]int{"unit_id": 7})

	for _, c := range []*WSConn{c1, c2} {
		select {
		case msg := <-c.send:
			var event WSEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if event.Type != "decision" || event.MatchID != "m1" {
				t.Errorf("unexpected event %+v", event)
			}
		case <-time.After(time.Second):
			t.Errorf("%s did not receive broadcast", c.caller)
		}
	}

	select {
	case <-c3.send:
		t.Error("viewer-3 watches another match and should not receive it")
	default:
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c := &WSConn{caller: "slow", send: make(chan []byte, 1)}
	hub.Register(c)
	defer hub.Unregister(c)
	hub.Subscribe(c, "m1")

	hub.BroadcastMatchEvent("m1", "decision", 1)
	hub.BroadcastMatchEvent("m1", "decision", 2)

	if len(c.send) != 1 {
		t.Errorf("expected the second event dropped, queue holds %d", len(c.send))
	}
}

func TestHubUnregisterCleansUpSubscriptions(t *testing.T) {
	hub := NewHub()
	c := newTestConn("viewer-1")
	hub.Register(c)
	hub.Subscribe(c, "m1")
	hub.Subscribe(c, "m2")

	hub.Unregister(c)

	if hub.MatchSubscriberCount("m1") != 0 || hub.MatchSubscriberCount("m2") != 0 {
		t.Error("expected no subscribers after unregister")
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestConn("viewer")
			hub.Register(c)
			hub.Subscribe(c, "m1")
			hub.BroadcastMatchEvent("m1", "decision", nil)
			hub.Unsubscribe(c, "m1")
			hub.Unregister(c)
		}()
	}

	wg.Wait()
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections after concurrent test, got %d", hub.ConnectionCount())
	}
}
