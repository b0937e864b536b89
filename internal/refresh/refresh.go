// Package refresh debounces bulk emulator output into display updates
// with a pair of timers: a short timer restarted on every arrival of
// decoder input, and a single-shot long timer that puts a floor under
// the snapshot rate during sustained output.
package refresh

import (
	"sync"
	"time"

	"github.com/konsolecore/termcore"
)

// Default timer intervals.
const (
	DefaultShortInterval = 10 * time.Millisecond
	DefaultLongInterval  = 40 * time.Millisecond
)

// Scheduler debounces Notify calls into Flush invocations. The caller
// provides a snapshot source (typically the Decoder's active Screen) and
// a sink that fans the snapshot out to attached displays.
type Scheduler struct {
	mu sync.Mutex

	short *time.Timer
	long  *time.Timer

	shortInterval time.Duration
	longInterval  time.Duration

	bursting bool
	stopped  bool

	take func() termcore.Snapshot
	push func(termcore.Snapshot)
}

// New returns a scheduler with the default intervals. take is called on
// the flush path to capture the active screen; push delivers the result.
func New(take func() termcore.Snapshot, push func(termcore.Snapshot)) *Scheduler {
	return &Scheduler{
		shortInterval: DefaultShortInterval,
		longInterval:  DefaultLongInterval,
		take:          take,
		push:          push,
	}
}

// SetIntervals overrides the debounce and rate-floor intervals.
func (s *Scheduler) SetIntervals(short, long time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortInterval = short
	s.longInterval = long
}

// Notify records that decoder input arrived: the short timer restarts,
// and the long timer starts if this is the first arrival of a burst. The
// long timer is deliberately not restarted, so a sustained
// stream still produces a snapshot every longInterval.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.short == nil {
		s.short = time.AfterFunc(s.shortInterval, s.fire)
	} else {
		s.short.Reset(s.shortInterval)
	}
	if !s.bursting {
		s.bursting = true
		if s.long == nil {
			s.long = time.AfterFunc(s.longInterval, s.fire)
		} else {
			s.long.Reset(s.longInterval)
		}
	}
}

// fire is the show-bulk slot both timers feed into.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopTimersLocked()
	take, push := s.take, s.push
	s.mu.Unlock()

	// Snapshot capture and delivery happen outside the lock so a slow
	// display cannot stall Notify on the decode path.
	push(take())
}

// Flush forces an immediate snapshot, used on session attach and resize
// so a new display is not left blank until the next burst.
func (s *Scheduler) Flush() {
	s.fire()
}

// Stop cancels pending timers; further Notify calls are ignored. Called
// on session close.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopTimersLocked()
}

func (s *Scheduler) stopTimersLocked() {
	if s.short != nil {
		s.short.Stop()
	}
	if s.long != nil {
		s.long.Stop()
	}
	s.bursting = false
}
