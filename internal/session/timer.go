package session

import (
	"fmt"
	"sync"
	"time"
)

// TimerState is the phase of the inactivity countdown.
type TimerState int

const (
	// Idle means no countdown is active.
	Idle TimerState = iota
	// Running means the countdown is ticking.
	Running
	// Expired means the countdown reached zero and fired its expiry.
	Expired
)

func (s TimerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("TimerState(%d)", int(s))
	}
}

// DefaultLength is the countdown length in seconds.
const DefaultLength = 300

// Timer is the session inactivity countdown. Every Start opens a new
// generation; ticks belonging to an older generation are ignored, so a
// countdown that was reset can never expire.
//
// Callbacks run outside the timer's lock. onTick receives the display value
// after each change, onExpire the generation that expired.
type Timer struct {
	length   int
	interval time.Duration
	onTick   func(display string)
	onExpire func(gen uint64)

	mu        sync.Mutex
	state     TimerState
	remaining int
	gen       uint64
	stop      chan struct{}
}

// NewTimer creates an idle countdown of length seconds. With a zero interval
// the timer is manual and only advances through Tick.
func NewTimer(length int, interval time.Duration, onTick func(string), onExpire func(uint64)) *Timer {
	if length <= 0 {
		length = DefaultLength
	}
	if onTick == nil {
		onTick = func(string) {}
	}
	if onExpire == nil {
		onExpire = func(uint64) {}
	}
	return &Timer{length: length, interval: interval, onTick: onTick, onExpire: onExpire}
}

// Start restarts the countdown at its full length and returns the new
// generation. Any countdown already in flight is cancelled.
func (t *Timer) Start() uint64 {
	t.mu.Lock()
	t.halt()
	t.gen++
	gen := t.gen
	t.state = Running
	t.remaining = t.length
	if t.interval > 0 {
		t.stop = make(chan struct{})
		go t.run(gen, t.stop)
	}
	display := FormatCountdown(t.remaining)
	t.mu.Unlock()

	t.onTick(display)
	return gen
}

// Reset cancels the in-flight countdown and starts a fresh one.
func (t *Timer) Reset() uint64 {
	return t.Start()
}

// Stop cancels the countdown without signalling expiry.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.halt()
	t.gen++
	t.state = Idle
	t.remaining = 0
}

// Tick advances a manual countdown by one second.
func (t *Timer) Tick() {
	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()
	t.tick(gen)
}

// State returns the current phase.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the seconds left on the countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Display returns the remaining time as MM:SS.
func (t *Timer) Display() string {
	return FormatCountdown(t.Remaining())
}

// tick reports whether the countdown of gen is still running afterwards.
func (t *Timer) tick(gen uint64) bool {
	t.mu.Lock()
	if gen != t.gen || t.state != Running {
		t.mu.Unlock()
		return false
	}
	t.remaining--
	display := FormatCountdown(t.remaining)
	expired := t.remaining <= 0
	if expired {
		t.state = Expired
		t.halt()
	}
	t.mu.Unlock()

	t.onTick(display)
	if expired {
		t.onExpire(gen)
	}
	return !expired
}

func (t *Timer) run(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.tick(gen) {
				return
			}
		}
	}
}

// halt closes the running goroutine's stop channel. Callers hold t.mu.
func (t *Timer) halt() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// FormatCountdown renders seconds as zero padded MM:SS.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
