// Package clock drives the cosmetic animation phase of the diagram.
package clock

import (
	"context"
	"math"
	"sync"
	"time"
)

// TwoPi is the phase period.
const TwoPi = 2 * math.Pi

// Defaults used when the configuration leaves timing unset.
const (
	DefaultPeriod = 50 * time.Millisecond
	DefaultStep   = 0.05
)

// TickFunc observes every phase advance. It runs on the clock goroutine and
// must not call Stop.
type TickFunc func(phase float64)

// Clock advances a phase by a fixed step every period, modulo 2π.
// Start and Stop pause and resume it without losing the phase; both are
// idempotent. Once Stop returns no further advance happens until the next
// Start.
type Clock struct {
	// life serializes Start, Stop, Toggle and SetTiming.
	life sync.Mutex

	mu      sync.Mutex
	phase   float64
	period  time.Duration
	step    float64
	running bool
	stop    chan struct{}
	done    chan struct{}
	onTick  TickFunc
}

// New returns a stopped clock at phase 0. Non-positive timing values fall
// back to the defaults.
func New(period time.Duration, step float64, onTick TickFunc) *Clock {
	c := &Clock{onTick: onTick}
	c.period, c.step = normalise(period, step)
	return c
}

func normalise(period time.Duration, step float64) (time.Duration, float64) {
	if period <= 0 {
		period = DefaultPeriod
	}
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = DefaultStep
	}
	return period, step
}

// Start resumes ticking. Calling Start on a running clock does nothing.
func (c *Clock) Start() {
	c.life.Lock()
	defer c.life.Unlock()
	c.start()
}

func (c *Clock) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(c.stop, c.done, c.period)
}

// Stop pauses ticking and waits for the tick goroutine to exit.
func (c *Clock) Stop() {
	c.life.Lock()
	defer c.life.Unlock()
	c.halt()
}

func (c *Clock) halt() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stop, c.done
	close(stop)
	c.mu.Unlock()
	<-done
}

// Toggle flips between running and paused and returns the new state.
func (c *Clock) Toggle() bool {
	c.life.Lock()
	defer c.life.Unlock()
	if c.Running() {
		c.halt()
		return false
	}
	c.start()
	return true
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Phase returns the current phase in [0, 2π).
func (c *Clock) Phase() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Reset sets the phase back to 0 without changing the running state.
func (c *Clock) Reset() {
	c.mu.Lock()
	c.phase = 0
	c.mu.Unlock()
}

// Timing returns the current period and step.
func (c *Clock) Timing() (time.Duration, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period, c.step
}

// SetTiming changes period and step. A running clock is restarted so the new
// period applies immediately.
func (c *Clock) SetTiming(period time.Duration, step float64) {
	period, step = normalise(period, step)

	c.life.Lock()
	defer c.life.Unlock()

	c.mu.Lock()
	changed := period != c.period
	c.period, c.step = period, step
	running := c.running
	c.mu.Unlock()

	if running && changed {
		c.halt()
		c.start()
	}
}

// Advance moves the phase forward by n steps and returns it.
func (c *Clock) Advance(n int) float64 {
	c.mu.Lock()
	c.phase = wrap(c.phase + float64(n)*c.step)
	p := c.phase
	c.mu.Unlock()
	return p
}

// Run starts the clock and stops it when ctx is done.
func (c *Clock) Run(ctx context.Context) error {
	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}

func (c *Clock) loop(stop, done chan struct{}, period time.Duration) {
	defer close(done)
	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			phase, ok := c.tick(stop)
			if !ok {
				return
			}
			if c.onTick != nil {
				c.onTick(phase)
			}
		}
	}
}

// tick advances once if stop still belongs to the live run.
func (c *Clock) tick(stop chan struct{}) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.stop != stop {
		return 0, false
	}
	c.phase = wrap(c.phase + c.step)
	return c.phase, true
}

func wrap(p float64) float64 {
	p = math.Mod(p, TwoPi)
	if p < 0 {
		p += TwoPi
	}
	return p
}

// Opacity is the rendering opacity of the node at index for phase:
// 0.7 + 0.3*sin(phase + index).
func Opacity(phase float64, index int) float64 {
	return 0.7 + 0.3*math.Sin(phase+float64(index))
}
