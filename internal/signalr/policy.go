package signalr

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Dicklesworthstone/shokodash/internal/watcher"
)

// Backoff defaults.
const (
	DefaultUnit        = 2 * time.Second
	DefaultCeiling     = 60 * time.Second
	DefaultMaxAttempts = 4
	DefaultDebounce    = 5 * time.Second
)

// Backoff describes the reconnect curve: delay = min(ceiling, e^attempt * unit)
// with attempt capped at MaxAttempts.
type Backoff struct {
	Unit        time.Duration
	Ceiling     time.Duration
	MaxAttempts int
	Debounce    time.Duration
}

// DefaultBackoff returns the default reconnect curve.
func DefaultBackoff() Backoff {
	return Backoff{
		Unit:        DefaultUnit,
		Ceiling:     DefaultCeiling,
		MaxAttempts: DefaultMaxAttempts,
		Debounce:    DefaultDebounce,
	}
}

func (b Backoff) withDefaults() Backoff {
	def := DefaultBackoff()
	if b.Unit <= 0 {
		b.Unit = def.Unit
	}
	if b.Ceiling <= 0 {
		b.Ceiling = def.Ceiling
	}
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = def.MaxAttempts
	}
	if b.Debounce <= 0 {
		b.Debounce = def.Debounce
	}
	return b
}

// Delay returns the backoff for the given attempt count, rounded to the
// millisecond.
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.withDefaults()
	if attempt > b.MaxAttempts {
		attempt = b.MaxAttempts
	}
	ms := math.Exp(float64(attempt)) * float64(b.Unit.Milliseconds())
	ms = math.Min(ms, float64(b.Ceiling.Milliseconds()))
	return time.Duration(math.Round(ms)) * time.Millisecond
}

// Policy decides when to reconnect after a close. It owns at most one
// pending retry timer; arming a new one stops the previous one.
type Policy struct {
	clock    clockwork.Clock
	backoff  Backoff
	debounce *watcher.Debouncer
	start    func()
	logger   *slog.Logger

	mu          sync.Mutex
	attempts    int
	lastAttempt time.Time
	lastDelay   time.Duration
	timer       clockwork.Timer
	generation  uint64
	pending     time.Duration
	stopped     bool
}

// NewPolicy creates a policy that calls start whenever a retry fires.
func NewPolicy(start func(), backoff Backoff, clock clockwork.Clock, logger *slog.Logger) *Policy {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	backoff = backoff.withDefaults()
	return &Policy{
		clock:       clock,
		backoff:     backoff,
		debounce:    watcher.NewDebouncerWithClock(backoff.Debounce, clock),
		start:       start,
		logger:      logger,
		lastAttempt: clock.Now(),
	}
}

// Opened records a successful open: the attempt counter goes back to 0.
func (p *Policy) Opened() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts = 0
	p.lastAttempt = p.clock.Now()
}

// Closed reports a close (or a failed start). Closes inside the debounce
// window collapse into one retry decision.
func (p *Policy) Closed() {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return
	}
	p.debounce.Trigger(p.decide)
}

func (p *Policy) decide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}

	if p.attempts < p.backoff.MaxAttempts {
		p.attempts++
	}
	now := p.clock.Now()
	elapsed := now.Sub(p.lastAttempt)
	p.lastAttempt = now
	delay := p.backoff.Delay(p.attempts)
	p.lastDelay = delay

	wait := time.Duration(0)
	if elapsed < delay {
		wait = delay - elapsed
	}
	p.logger.Info("channel reconnect scheduled",
		"attempt", p.attempts,
		"delay_ms", delay.Milliseconds(),
		"wait_ms", wait.Milliseconds())
	p.armLocked(wait)
}

// armLocked replaces the pending timer. A zero wait still goes through the
// clock so start never runs on the caller's stack.
func (p *Policy) armLocked(wait time.Duration) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.pending = wait
	p.generation++
	gen := p.generation
	p.timer = p.clock.AfterFunc(wait, func() { p.fire(gen) })
}

func (p *Policy) fire(gen uint64) {
	p.mu.Lock()
	if p.stopped || gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.pending = 0
	start := p.start
	p.mu.Unlock()

	if start != nil {
		start()
	}
}

// Pending reports the wait of the armed retry timer, if any.
func (p *Policy) Pending() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending, p.timer != nil
}

// Attempts returns the current attempt counter.
func (p *Policy) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// LastDelay returns the backoff computed by the most recent retry decision.
func (p *Policy) LastDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastDelay
}

// Stop cancels the debounce and any pending retry. Further closes are
// ignored.
func (p *Policy) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.debounce.Cancel()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.generation++
	p.pending = 0
}
