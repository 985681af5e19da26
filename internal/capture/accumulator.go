package capture

import (
	"strings"

	"voicenotes/internal/speech"
)

// Accumulator folds successive recognition results into the current-best
// transcript. Each result carries every segment observed so far, so folding
// replaces the held value rather than appending to it: later interim results
// supersede earlier ones.
type Accumulator struct {
	current string
}

// Fold replaces the held transcript with the in-order concatenation of all
// segment texts, with no separator.
func (a *Accumulator) Fold(segments []speech.Segment) {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	a.current = b.String()
}

// Current returns the latest transcript, empty if no speech was recognized.
func (a *Accumulator) Current() string {
	return a.current
}

// Reset clears the held transcript.
func (a *Accumulator) Reset() {
	a.current = ""
}
