package speech

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Start when the host environment offers no
// speech-recognition engine. The condition is permanent for the session;
// callers cache it and present a disabled state instead of retrying.
var ErrUnavailable = errors.New("speech recognition unavailable")

// EventKind discriminates recognizer events.
type EventKind int

const (
	// EventResult carries the full cumulative segment list observed so far.
	EventResult EventKind = iota
	// EventError reports a recognition failure with a reason code.
	EventError
	// EventEnd signals that the engine stopped; no further events follow.
	EventEnd
)

// ErrorReason is the engine's failure code.
type ErrorReason string

const (
	ReasonNetwork    ErrorReason = "network"
	ReasonNoSpeech   ErrorReason = "no-speech"
	ReasonNotAllowed ErrorReason = "not-allowed"
	ReasonAborted    ErrorReason = "aborted"
)

// Segment is one recognized piece of speech. Interim segments are revised by
// later results; final segments are stable.
type Segment struct {
	Text  string
	Final bool
}

// Event is one entry of a recognizer's event stream.
type Event struct {
	Kind EventKind
	// Segments holds every segment recognized so far in the session, in
	// order. Only set for EventResult. Each result supersedes the previous
	// one; it is not a delta.
	Segments []Segment
	// Reason is only set for EventError.
	Reason ErrorReason
}

// Recognizer abstracts a continuous speech-recognition engine with interim
// results enabled. Stop is idempotent and is always followed eventually by
// exactly one EventEnd, after which the event channel is closed. The engine
// may also end on its own (timeout) without Stop being called.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop()
	Events() <-chan Event
}
