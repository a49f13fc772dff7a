// Package paging grows a visible window over a filtered list in fixed steps.
package paging

import (
	"sync"
	"time"

	"github.com/stitts-dev/football-site/internal/clock"
)

const (
	DefaultInitial = 50
	DefaultStep    = 50
	DefaultDelay   = 300 * time.Millisecond
)

// Options configures a Pager. Zero values fall back to the defaults.
type Options struct {
	Initial int
	Step    int
	Delay   time.Duration
}

// Page is the window exposed to the view.
type Page struct {
	Visible int  `json:"visible"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
	Loading bool `json:"loading"`
}

// Pager tracks how much of a filtered list is shown.
//
// LoadMore schedules an increment after Delay. Reset discards a pending increment, and
// every increment is clamped to the list length read when it resolves, so a load started
// before a filter change never applies to the new list.
type Pager struct {
	mu      sync.Mutex
	clock   clock.Clock
	initial int
	step    int
	delay   time.Duration

	count   int
	loading bool
	epoch   uint64
	timer   clock.Timer
}

// New returns a pager showing Initial items.
func New(opts Options, clk clock.Clock) *Pager {
	if opts.Initial <= 0 {
		opts.Initial = DefaultInitial
	}
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	} else if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Pager{
		clock:   clk,
		initial: opts.Initial,
		step:    opts.Step,
		delay:   opts.Delay,
		count:   opts.Initial,
	}
}

// Page returns the window over a list of total items.
func (p *Pager) Page(total int) Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Page{
		Visible: min(p.count, total),
		Total:   total,
		HasMore: p.count < total,
		Loading: p.loading,
	}
}

// Loading reports whether an increment is pending.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// LoadMore schedules one increment. total is read when the increment resolves; done,
// if not nil, receives the resulting page. It reports false when a load is already
// pending or every item is already visible.
func (p *Pager) LoadMore(currentTotal int, total func() int, done func(Page)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loading || p.count >= currentTotal {
		return false
	}
	p.loading = true
	epoch := p.epoch
	p.timer = p.clock.AfterFunc(p.delay, func() { p.resolve(epoch, total, done) })
	return true
}

// Reset returns to the initial window and discards any pending increment.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.epoch++
	p.loading = false
	p.count = p.initial
}

func (p *Pager) resolve(epoch uint64, total func() int, done func(Page)) {
	if !p.current(epoch) {
		return
	}

	// total may take its owner's lock, so it is read without p.mu held.
	n := total()

	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return
	}
	p.count = max(p.initial, min(p.count+p.step, n))
	p.loading = false
	p.timer = nil
	page := Page{
		Visible: min(p.count, n),
		Total:   n,
		HasMore: p.count < n,
	}
	p.mu.Unlock()

	if done != nil {
		done(page)
	}
}

func (p *Pager) current(epoch uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return epoch == p.epoch
}
