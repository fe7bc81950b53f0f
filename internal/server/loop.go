package server

import (
	"sync"

	"github.com/driftvale/tilerealm/server/internal/logger"
)

// taskBufferSize is the world loop's queue length. Enqueues beyond this
// drop rather than block network readers.
const taskBufferSize = 1024

// Loop is the single-threaded world event loop. All session, room, and
// population state is owned by the goroutine running Run; connection
// readers and the respawn ticker only ever enqueue work. Each task runs
// to completion before the next starts, which is what makes the
// multi-step join and map-change sequences atomic without locks.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a stopped-state loop; call Run on its own goroutine.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), taskBufferSize),
		done:  make(chan struct{}),
	}
}

// Run processes queued tasks until Stop is called.
func (l *Loop) Run() {
	for {
		select {
		case task := <-l.tasks:
			l.runTask(task)
		case <-l.done:
			return
		}
	}
}

// runTask executes one task, containing any panic so a single bad event
// can't take the shared loop down with it.
func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panicked", "panic", r)
		}
	}()
	task()
}

// Enqueue schedules a task on the loop. Returns false if the loop has
// stopped or the queue is full; the task is dropped in either case.
func (l *Loop) Enqueue(task func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.done:
		return false
	default:
		logger.Warning("World loop queue full, dropping task")
		return false
	}
}

// Stop shuts the loop down. Queued tasks that haven't run are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}
