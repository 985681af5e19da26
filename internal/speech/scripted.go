package speech

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyStarted is returned when Start is called on a live Scripted engine.
var ErrAlreadyStarted = errors.New("recognizer already started")

// Scripted replays a fixed event sequence. It stands in for a platform
// recognition engine in tests and in environments without one.
//
// After Start, the scripted events are emitted in order. The terminal
// EventEnd is always emitted exactly once, whether or not the script includes
// one: by default it waits for Stop (mirroring an engine that listens until
// told to stop), with AutoEnd it follows the script immediately (mirroring an
// engine-driven timeout).
type Scripted struct {
	// Script is the event sequence emitted after Start. Any EventEnd inside
	// the script is ignored; the terminal end is managed by the engine.
	Script []Event
	// Unavailable makes Start fail with ErrUnavailable.
	Unavailable bool
	// AutoEnd emits the terminal end without waiting for Stop.
	AutoEnd bool

	mu      sync.Mutex
	events  chan Event
	stop    chan struct{}
	started bool
	stopped bool
}

// Start begins replaying the script on the event channel.
func (s *Scripted) Start(ctx context.Context) error {
	if s.Unavailable {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.stop = make(chan struct{})
	if s.stopped {
		// Stop arrived before Start; honor it immediately.
		close(s.stop)
	}
	ch := s.channelLocked()
	go s.run(ctx, ch)
	return nil
}

// Stop asks the engine to finish. It is idempotent and safe to call before
// Start; the terminal EventEnd follows on the event channel.
func (s *Scripted) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.stop != nil {
		close(s.stop)
	}
}

// Events returns the engine's event stream. The channel is closed after the
// terminal EventEnd.
func (s *Scripted) Events() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelLocked()
}

func (s *Scripted) channelLocked() chan Event {
	if s.events == nil {
		s.events = make(chan Event)
	}
	return s.events
}

func (s *Scripted) run(ctx context.Context, ch chan Event) {
	defer close(ch)
	for _, ev := range s.Script {
		if ev.Kind == EventEnd {
			continue
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
	if !s.AutoEnd {
		select {
		case <-s.stop:
		case <-ctx.Done():
			return
		}
	}
	select {
	case ch <- Event{Kind: EventEnd}:
	case <-ctx.Done():
	}
}
