// Package engine provides the tick-based map loop. Edits are queued from
// any goroutine and applied on the loop goroutine; each tick then
// re-triangulates the chunks those edits dirtied and periodically saves
// the map.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/lookout/internal/persistence"
	"github.com/talgya/lookout/internal/triangulate"
	"github.com/talgya/lookout/internal/world"
)

// ErrQueueClosed is returned by Submit once the loop has stopped.
var ErrQueueClosed = errors.New("engine stopped")

// Edit mutates the grid. Edits run on the loop goroutine only.
type Edit func(g *world.Grid)

// Saver persists the grid under a name.
type Saver interface {
	SaveMap(name string, g *world.Grid) (persistence.MapRecord, error)
}

// Stats counts what the loop has done so far.
type Stats struct {
	Ticks   uint64
	Edits   uint64
	Rebuilt uint64 // Chunk rebuilds
	Saves   uint64
}

// Engine drives the map forward.
type Engine struct {
	Tick          uint64        // Current tick counter (monotonic)
	Interval      time.Duration // Wall time between ticks
	MaxTicks      uint64        // 0 runs until the context ends
	AutosaveEvery uint64        // Ticks between saves, 0 disables
	MapName       string        // Name used for saves

	// Callbacks, populated during setup.
	OnTick    func(tick uint64)               // After queued edits, before the refresh
	OnRebuild func(tick uint64, chunks []int) // When at least one chunk was rebuilt

	grid      *world.Grid
	refresher *triangulate.Refresher
	saver     Saver
	edits     chan Edit
	stats     Stats

	// closed is set under the write lock before the final drain, so every
	// accepted edit is applied and saved. stopping wakes blocked senders.
	mu       sync.RWMutex
	closed   bool
	stopping chan struct{}
}

// NewEngine creates an engine for g. A nil saver disables autosave.
func NewEngine(g *world.Grid, saver Saver) *Engine {
	return &Engine{
		Interval:  100 * time.Millisecond,
		MapName:   "autosave",
		grid:      g,
		refresher: triangulate.NewRefresher(g),
		saver:     saver,
		edits:     make(chan Edit, 64),
		stopping:  make(chan struct{}),
	}
}

// Refresher exposes the current chunk meshes.
func (e *Engine) Refresher() *triangulate.Refresher { return e.refresher }

// Stats returns the counters. Only call it from the loop goroutine or
// after Run has returned.
func (e *Engine) Stats() Stats { return e.stats }

// Submit queues an edit for the next tick. It blocks while the queue is
// full. An edit accepted with a nil error is always applied, at the latest
// during shutdown.
func (e *Engine) Submit(ctx context.Context, fn Edit) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrQueueClosed
	}
	select {
	case e.edits <- fn:
		return nil
	case <-e.stopping:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks until the context ends or MaxTicks is reached, then saves the
// map one last time. A cancelled context is a normal stop.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("map engine started", "tick", e.Tick, "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for e.MaxTicks == 0 || e.Tick < e.MaxTicks {
		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case <-ticker.C:
			e.Step()
		}
	}
	e.shutdown()
	return nil
}

func (e *Engine) shutdown() {
	close(e.stopping)
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.drain()
	e.refresh()
	if e.saver != nil && e.AutosaveEvery > 0 {
		e.save()
	}
	slog.Info("map engine stopped", "tick", e.Tick,
		"edits", e.stats.Edits, "rebuilt", e.stats.Rebuilt, "saves", e.stats.Saves)
}

// Step advances the map by one tick.
func (e *Engine) Step() {
	e.Tick++
	e.stats.Ticks++

	e.drain()
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	e.refresh()

	if e.saver != nil && e.AutosaveEvery > 0 && e.Tick%e.AutosaveEvery == 0 {
		e.save()
	}
}

func (e *Engine) drain() {
	for {
		select {
		case fn := <-e.edits:
			fn(e.grid)
			e.stats.Edits++
		default:
			return
		}
	}
}

func (e *Engine) refresh() {
	chunks := e.refresher.Process()
	if len(chunks) == 0 {
		return
	}
	e.stats.Rebuilt += uint64(len(chunks))
	if e.OnRebuild != nil {
		e.OnRebuild(e.Tick, chunks)
	}
}

func (e *Engine) save() {
	rec, err := e.saver.SaveMap(e.MapName, e.grid)
	if err != nil {
		slog.Error("autosave failed", "tick", e.Tick, "map", e.MapName, "error", err)
		return
	}
	e.stats.Saves++
	slog.Debug("autosaved", "tick", e.Tick, "map", rec.Name)
}
