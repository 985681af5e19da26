package content

import (
	"html"
	"strings"
)

// Type identifies how a note's content is encoded.
type Type string

const (
	// TypePlain is raw text where "\n" line breaks are significant.
	TypePlain Type = "plain"
	// TypeRich is a sequence of paragraph-wrapped HTML fragments.
	TypeRich Type = "rich"
)

// titleWordLimit is how many leading words of a transcript become the title.
const titleWordLimit = 5

// TitleFromTranscript derives a note title from the first few
// whitespace-separated words of a transcript, marked with an ellipsis.
func TitleFromTranscript(transcript string) string {
	words := strings.Fields(transcript)
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	return strings.Join(words, " ") + "..."
}

// Paragraph wraps text as a single HTML paragraph fragment. The text is
// escaped so the rich representation stays parseable whatever the recognizer
// or editor hands in.
func Paragraph(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}

// FromTranscript builds a new note's title and rich content from a final
// transcript: the whole transcript becomes one paragraph.
func FromTranscript(transcript string) (title, body string, typ Type) {
	return TitleFromTranscript(transcript), Paragraph(transcript), TypeRich
}

// Append merges a transcript into existing content without changing its type.
// Rich content gains one new paragraph. Plain content gains the transcript as
// a new line separated by a blank line; appending never upgrades plain to
// rich, only an explicit editor save does.
func Append(existing string, typ Type, transcript string) (string, Type) {
	if typ == TypeRich {
		return existing + Paragraph(transcript), TypeRich
	}
	if strings.TrimSpace(existing) == "" {
		// Nothing to separate from; no leading blank lines.
		return transcript, TypePlain
	}
	return existing + "\n\n" + transcript, TypePlain
}

// MigrateForEditing converts legacy plain (or untyped) content to the rich
// representation the editor works in. Rich content is returned unchanged, so
// migration is idempotent. Each non-blank line of plain content becomes its
// own paragraph after trimming; blank lines are dropped. Content that is
// entirely blank yields a single empty paragraph.
func MigrateForEditing(existing string, typ Type) (string, Type) {
	if typ == TypeRich {
		return existing, TypeRich
	}
	var b strings.Builder
	for _, line := range strings.Split(existing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(Paragraph(line))
	}
	if b.Len() == 0 {
		return "<p></p>", TypeRich
	}
	return b.String(), TypeRich
}

// ParagraphCount reports how many paragraphs a rich content value holds.
// Escaped paragraph text can never contain a literal "<p>".
func ParagraphCount(body string) int {
	return strings.Count(body, "<p>")
}
