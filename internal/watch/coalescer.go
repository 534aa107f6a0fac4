package watch

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last trigger before a
// rebuild is signalled.
const DefaultDebounce = 400 * time.Millisecond

// State is the coalescer state
type State int

const (
	// Idle means no rebuild is scheduled
	Idle State = iota
	// Pending means a timer is armed and the deadline may still slide
	Pending
)

// String returns the state name
func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Coalescer turns bursts of triggers into single rebuild signals. Any number
// of goroutines may call Trigger; one consumer receives from C.
//
// At most one timer exists. Triggers while Pending move the deadline
// forward; when the timer fires early it re-arms itself for the remaining
// time instead of signalling.
type Coalescer struct {
	interval time.Duration
	signal   chan struct{}

	mu       sync.Mutex
	state    State
	deadline time.Time
	timer    *time.Timer
	stopped  bool

	// now is replaceable in tests
	now func() time.Time
}

// NewCoalescer creates an idle coalescer. A non-positive interval selects
// DefaultDebounce.
func NewCoalescer(interval time.Duration) *Coalescer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Coalescer{
		interval: interval,
		signal:   make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Interval returns the debounce interval
func (c *Coalescer) Interval() time.Duration {
	return c.interval
}

// C delivers one value per coalesced burst
func (c *Coalescer) C() <-chan struct{} {
	return c.signal
}

// State returns the current state
func (c *Coalescer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Trigger records a change. It never blocks.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.deadline = c.now().Add(c.interval)
	if c.state == Pending {
		return
	}
	c.state = Pending
	if c.timer == nil {
		c.timer = time.AfterFunc(c.interval, c.fire)
	} else {
		c.timer.Reset(c.interval)
	}
}

func (c *Coalescer) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state != Pending {
		return
	}
	if remaining := c.deadline.Sub(c.now()); remaining > 0 {
		c.timer.Reset(remaining)
		return
	}

	c.state = Idle
	select {
	case c.signal <- struct{}{}:
	default:
		// an unconsumed signal already covers this burst
	}
}

// Stop cancels any armed timer. No signal is sent once Stop has been
// called and later triggers are ignored.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.state = Idle
	if c.timer != nil {
		c.timer.Stop()
	}
}

// Stopped reports whether Stop was called
func (c *Coalescer) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
