package server

import (
	"time"

	"github.com/driftvale/tilerealm/server/internal/logger"
	"github.com/driftvale/tilerealm/server/internal/maps"
)

// RespawnScheduler periodically tops up each occupied map's enemy
// population toward its configured target. The ticker goroutine only
// enqueues work; the actual spawning runs on the world event loop, so a
// tick can never interleave with a defeat report partway through.
type RespawnScheduler struct {
	loop       *Loop
	handler    *Handler
	maps       *maps.Table
	interval   time.Duration
	maxPerTick int
	stopChan   chan struct{}
}

// NewRespawnScheduler creates a scheduler. maxPerTick of 0 means each
// tick may top a map up to its full target at once.
func NewRespawnScheduler(loop *Loop, handler *Handler, mapTable *maps.Table, interval time.Duration, maxPerTick int) *RespawnScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &RespawnScheduler{
		loop:       loop,
		handler:    handler,
		maps:       mapTable,
		interval:   interval,
		maxPerTick: maxPerTick,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the respawn ticking loop.
func (rs *RespawnScheduler) Start() {
	go rs.tickLoop()
	logger.Info("Respawn scheduler started", "interval", rs.interval)
}

// Stop stops the ticking loop.
func (rs *RespawnScheduler) Stop() {
	close(rs.stopChan)
	logger.Info("Respawn scheduler stopped")
}

func (rs *RespawnScheduler) tickLoop() {
	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rs.loop.Enqueue(rs.Tick)
		case <-rs.stopChan:
			return
		}
	}
}

// Tick runs one reconciliation pass. Safe zones (target 0) are always
// skipped, as are maps with no occupants; placement shortfalls are
// tolerated and retried next tick. Must run on the world event loop.
func (rs *RespawnScheduler) Tick() {
	totalSpawned := 0
	for _, mapID := range rs.maps.IDs() {
		mapDef, ok := rs.maps.Get(mapID)
		if !ok || mapDef.TargetPopulation <= 0 {
			continue
		}
		if len(rs.handler.Sessions().SessionsOnMap(mapID)) == 0 {
			continue
		}

		needed := mapDef.TargetPopulation - rs.handler.Enemies().Count(mapID)
		if needed <= 0 {
			continue
		}
		if rs.maxPerTick > 0 && needed > rs.maxPerTick {
			needed = rs.maxPerTick
		}

		spawned := rs.handler.SpawnForMap(mapDef, needed)
		totalSpawned += len(spawned)
	}

	if totalSpawned > 0 {
		logger.Debug("Respawn tick spawned enemies", "spawned", totalSpawned)
	}
}
