// Package debounce delays a value until input has been idle for a fixed interval.
package debounce

import (
	"sync"
	"time"

	"github.com/stitts-dev/football-site/internal/clock"
)

// DefaultInterval is the idle time required before a search term is applied.
const DefaultInterval = 300 * time.Millisecond

// State is the debouncer's position in its two-state machine.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Snapshot describes the debouncer at a point in time. Deadline and Value are only
// meaningful while Pending.
type Snapshot[T any] struct {
	State    State
	Deadline time.Time
	Value    T
}

// Debouncer is a single-slot debounce timer. Every Push cancels the pending timer and
// starts a new one, so only the last value pushed within an interval is delivered.
//
// The callback runs on the clock's timer goroutine without the debouncer lock held.
type Debouncer[T any] struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	onFire   func(T)

	state    State
	deadline time.Time
	value    T
	timer    clock.Timer
	seq      uint64
}

// New creates an idle debouncer. interval <= 0 means DefaultInterval; a nil clock means wall-clock time.
func New[T any](interval time.Duration, clk clock.Clock, onFire func(T)) *Debouncer[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Debouncer[T]{
		clock:    clk,
		interval: interval,
		onFire:   onFire,
	}
}

// Push records v and restarts the idle window: idle -> pending, pending -> pending.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	id := d.seq
	d.state = Pending
	d.value = v
	d.deadline = d.clock.Now().Add(d.interval)
	d.timer = d.clock.AfterFunc(d.interval, func() { d.fire(id) })
}

// Cancel drops the pending value, if any: pending -> idle.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	d.reset()
}

// Snapshot returns the current state.
func (d *Debouncer[T]) Snapshot() Snapshot[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot[T]{State: d.state, Deadline: d.deadline, Value: d.value}
}

func (d *Debouncer[T]) fire(id uint64) {
	d.mu.Lock()
	// A real timer can fire after Stop lost the race; the sequence check discards it.
	if id != d.seq || d.state != Pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.timer = nil
	d.reset()
	d.mu.Unlock()

	d.deliver(v)
}

func (d *Debouncer[T]) deliver(v T) {
	if d.onFire != nil {
		d.onFire(v)
	}
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) reset() {
	var zero T
	d.state = Idle
	d.value = zero
	d.deadline = time.Time{}
}
