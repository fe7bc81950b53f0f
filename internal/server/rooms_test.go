package server

import "testing"

func TestBroadcastToMap(t *testing.T) {
	r := NewRoomRouter()

	a := &fakeClient{}
	b := &fakeClient{}
	c := &fakeClient{}
	r.Register("a", a)
	r.Register("b", b)
	r.Register("c", c)
	r.Join("a", "world")
	r.Join("b", "world")
	r.Join("c", "dungeon")

	r.BroadcastToMap("world", "test", "payload", "")

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("expected both room members to receive the event, got %d and %d", len(a.events), len(b.events))
	}
	if len(c.events) != 0 {
		t.Errorf("expected no delivery outside the room, got %d", len(c.events))
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	r := NewRoomRouter()

	a := &fakeClient{}
	b := &fakeClient{}
	r.Register("a", a)
	r.Register("b", b)
	r.Join("a", "world")
	r.Join("b", "world")

	r.BroadcastToMap("world", "test", "payload", "a")

	if len(a.events) != 0 {
		t.Errorf("expected the excluded sender to receive nothing, got %d", len(a.events))
	}
	if len(b.events) != 1 {
		t.Errorf("expected the other member to receive the event, got %d", len(b.events))
	}
}

func TestLeaveRemovesMembership(t *testing.T) {
	r := NewRoomRouter()

	a := &fakeClient{}
	r.Register("a", a)
	r.Join("a", "world")

	if !r.IsMember("a", "world") {
		t.Fatal("expected membership after join")
	}

	r.Leave("a", "world")
	if r.IsMember("a", "world") {
		t.Error("expected membership removed after leave")
	}
	if r.RoomSize("world") != 0 {
		t.Errorf("expected empty room, got size %d", r.RoomSize("world"))
	}
}

func TestLeaveUnknownRoomTolerated(t *testing.T) {
	r := NewRoomRouter()
	r.Leave("ghost", "void") // must not panic
}

func TestEmitTo(t *testing.T) {
	r := NewRoomRouter()

	a := &fakeClient{}
	r.Register("a", a)

	r.EmitTo("a", "test", "payload")
	if len(a.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(a.events))
	}
	if a.events[0].event != "test" {
		t.Errorf("expected event 'test', got %q", a.events[0].event)
	}

	r.EmitTo("ghost", "test", "payload") // must not panic
}

func TestUnregisterStopsDelivery(t *testing.T) {
	r := NewRoomRouter()

	a := &fakeClient{}
	r.Register("a", a)
	r.Join("a", "world")
	r.Leave("a", "world")
	r.Unregister("a")

	r.EmitTo("a", "test", "payload")
	if len(a.events) != 0 {
		t.Errorf("expected no delivery after unregister, got %d", len(a.events))
	}
}
