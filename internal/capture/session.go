package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"voicenotes/internal/speech"
)

// State is a capture session's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateError
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Mode selects what a finished recording produces.
type Mode int

const (
	// ModeCreate turns the transcript into a brand-new note.
	ModeCreate Mode = iota
	// ModeAppend merges the transcript into an existing note.
	ModeAppend
)

// ActionKind discriminates synthesis actions.
type ActionKind int

const (
	ActionCreate ActionKind = iota
	ActionAppend
)

// Action is the single synthesis output of a finished capture session.
type Action struct {
	Kind ActionKind
	// TargetID is the note to merge into. Only set for ActionAppend.
	TargetID   string
	Transcript string
}

var (
	// ErrAlreadyRecording is returned when a start call arrives while a
	// recording is live. At most one session records at a time; this is a
	// caller contract violation, not a recoverable runtime case.
	ErrAlreadyRecording = errors.New("capture session already recording")
	// ErrNotRecording is returned by Stop outside of a live recording.
	ErrNotRecording = errors.New("capture session not recording")
	// ErrNoTarget is returned by StartAppend without a target note.
	ErrNoTarget = errors.New("append capture requires a target note")
)

// Session drives one recording session end-to-end. It owns a recognizer and
// an accumulator, carries the mode as data, and emits at most one Action per
// recording when the engine ends. A recognition error parks the session in
// StateError with no action; the next start clears it.
type Session struct {
	mu          sync.Mutex
	rec         speech.Recognizer
	acc         Accumulator
	state       State
	mode        Mode
	targetID    string
	reason      speech.ErrorReason
	unavailable bool
	emit        func(Action)
	logger      *slog.Logger
}

// NewSession creates a capture session over the given recognizer. emit
// receives at most one Action per recording; a nil emit discards actions.
func NewSession(rec speech.Recognizer, emit func(Action)) *Session {
	return &Session{
		rec:    rec,
		emit:   emit,
		logger: slog.Default(),
	}
}

// StartCreate begins a recording whose transcript becomes a new note.
func (s *Session) StartCreate(ctx context.Context) error {
	return s.start(ctx, ModeCreate, "")
}

// StartAppend begins a recording whose transcript is merged into the note
// identified by targetID. The caller guarantees a note is selected.
func (s *Session) StartAppend(ctx context.Context, targetID string) error {
	if targetID == "" {
		return ErrNoTarget
	}
	return s.start(ctx, ModeAppend, targetID)
}

func (s *Session) start(ctx context.Context, mode Mode, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		return ErrAlreadyRecording
	}
	if s.unavailable {
		return speech.ErrUnavailable
	}
	if err := s.rec.Start(ctx); err != nil {
		if errors.Is(err, speech.ErrUnavailable) {
			// Permanent for this session; remember and stay disabled.
			s.unavailable = true
		}
		return err
	}
	s.state = StateRecording
	s.mode = mode
	s.targetID = targetID
	s.reason = ""
	s.acc.Reset()
	s.logger.Debug("capture started", "mode", mode, "target_id", targetID)
	return nil
}

// Stop asks the engine to finish the live recording. The synthesis action, if
// any, is emitted when the engine's end event arrives.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return ErrNotRecording
	}
	s.mu.Unlock()
	s.rec.Stop()
	return nil
}

// HandleEvent applies one recognizer event to the state machine. Events
// arriving outside of a live recording are ignored.
func (s *Session) HandleEvent(ev speech.Event) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	switch ev.Kind {
	case speech.EventResult:
		s.acc.Fold(ev.Segments)
		s.mu.Unlock()
	case speech.EventError:
		s.state = StateError
		s.reason = ev.Reason
		s.acc.Reset()
		s.mu.Unlock()
		s.logger.Warn("recognition error", "reason", string(ev.Reason))
	case speech.EventEnd:
		action, ok := s.finalizeLocked()
		s.mu.Unlock()
		if ok && s.emit != nil {
			s.emit(action)
		}
	default:
		s.mu.Unlock()
	}
}

// finalizeLocked ends the recording and produces the session's synthesis
// action when any speech was captured. The mode carried since start decides
// which action is built; the two kinds are mutually exclusive for one end
// event. Caller holds the mutex.
func (s *Session) finalizeLocked() (Action, bool) {
	transcript := s.acc.Current()
	mode, targetID := s.mode, s.targetID
	s.state = StateIdle
	s.targetID = ""
	s.acc.Reset()
	if transcript == "" {
		return Action{}, false
	}
	if mode == ModeAppend {
		return Action{Kind: ActionAppend, TargetID: targetID, Transcript: transcript}, true
	}
	return Action{Kind: ActionCreate, Transcript: transcript}, true
}

// Pump feeds recognizer events into the session until the event stream closes
// or the context is cancelled.
func (s *Session) Pump(ctx context.Context) {
	events := s.rec.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.HandleEvent(ev)
		case <-ctx.Done():
			return
		}
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the live transcript of the recording in progress.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Current()
}

// ErrorReason returns the engine failure that parked the session in
// StateError, empty otherwise.
func (s *Session) ErrorReason() speech.ErrorReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}
