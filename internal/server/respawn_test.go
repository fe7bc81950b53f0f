package server

import (
	"testing"
	"time"
)

func newTestScheduler(h *Handler, maxPerTick int) *RespawnScheduler {
	return NewRespawnScheduler(NewLoop(), h, h.maps, time.Minute, maxPerTick)
}

func TestTickTopsUpOccupiedMap(t *testing.T) {
	h := newTestHandler()
	rs := newTestScheduler(h, 0)

	joinPlayer(t, h, "conn-1", "Ayla", "world")

	// Remove a few enemies, then tick
	for _, victim := range h.enemies.All("world")[:5] {
		h.enemies.Remove("world", victim.ID)
	}
	if got := h.enemies.Count("world"); got != 15 {
		t.Fatalf("expected 15 enemies before tick, got %d", got)
	}

	rs.Tick()

	if got := h.enemies.Count("world"); got != 20 {
		t.Errorf("expected population restored to 20, got %d", got)
	}
}

func TestTickNeverOvershoots(t *testing.T) {
	h := newTestHandler()
	rs := newTestScheduler(h, 0)

	joinPlayer(t, h, "conn-1", "Ayla", "world")

	rs.Tick()
	rs.Tick()
	rs.Tick()

	if got := h.enemies.Count("world"); got != 20 {
		t.Errorf("expected population capped at 20, got %d", got)
	}
}

func TestTickSkipsEmptyMaps(t *testing.T) {
	h := newTestHandler()
	rs := newTestScheduler(h, 0)

	// Nobody online anywhere
	rs.Tick()

	if got := h.enemies.Count("world"); got != 0 {
		t.Errorf("expected no spawning on unoccupied maps, got %d", got)
	}
}

func TestTickSkipsSafeZones(t *testing.T) {
	h := newTestHandler()
	rs := newTestScheduler(h, 0)

	joinPlayer(t, h, "conn-1", "Ayla", "town")

	rs.Tick()

	if got := h.enemies.Count("town"); got != 0 {
		t.Errorf("expected no spawning in a safe zone, got %d", got)
	}
}

func TestTickHonorsPerTickCap(t *testing.T) {
	h := newTestHandler()
	rs := newTestScheduler(h, 3)

	joinPlayer(t, h, "conn-1", "Ayla", "world")

	for _, victim := range h.enemies.All("world")[:10] {
		h.enemies.Remove("world", victim.ID)
	}

	rs.Tick()

	if got := h.enemies.Count("world"); got != 13 {
		t.Errorf("expected 13 enemies after a capped tick, got %d", got)
	}
}

func TestTickBroadcastsSpawns(t *testing.T) {
	h := newTestHandler()
	rs := newTestScheduler(h, 0)

	client := joinPlayer(t, h, "conn-1", "Ayla", "world")

	victim := h.enemies.All("world")[0]
	h.enemies.Remove("world", victim.ID)
	client.events = nil

	rs.Tick()

	if got := len(client.eventsNamed(EventEnemySpawned)); got != 1 {
		t.Errorf("expected 1 enemySpawned broadcast, got %d", got)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	h := newTestHandler()
	loop := NewLoop()
	go loop.Run()
	defer loop.Stop()

	rs := NewRespawnScheduler(loop, h, h.maps, 10*time.Millisecond, 0)
	rs.Start()
	time.Sleep(30 * time.Millisecond)
	rs.Stop() // must not panic or leak
}
