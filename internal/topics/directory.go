package topics

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"voicenotes/internal/contextutil"
	"voicenotes/internal/storage"
)

// ErrEmptyName is returned when declaring a topic with a blank name.
var ErrEmptyName = errors.New("topic name is required")

// GroupMode selects how notes are bucketed for display.
type GroupMode int

const (
	// GroupNone yields one group containing all notes.
	GroupNone GroupMode = iota
	// GroupByTopic yields one group per distinct topic.
	GroupByTopic
)

// AllNotesGroup is the name of the single group produced by GroupNone.
const AllNotesGroup = "All Notes"

// Group is one topic bucket of notes. Order within a group follows the input,
// i.e. most recently updated first as the store lists them.
type Group struct {
	Topic string
	Notes []storage.Note
}

// Directory derives the authoritative topic set from notes, plus the names
// this session declared without creating a note. Declared-empty names live
// only here: the store never persists a topic without notes, so they are lost
// when a fresh session builds a new directory. One Directory is shared by all
// request handlers, so the declared-empty set is guarded for concurrent use.
type Directory struct {
	store storage.NoteStore

	mu            sync.RWMutex
	declaredEmpty map[string]struct{}
}

// NewDirectory creates an empty directory over the given store.
func NewDirectory(store storage.NoteStore) *Directory {
	return &Directory{
		store:         store,
		declaredEmpty: make(map[string]struct{}),
	}
}

// List returns the sorted union of every note's topic and the declared-empty
// set. Duplicates collapse by exact string equality: "work" and "Work" are
// distinct topics.
func (d *Directory) List(notes []storage.Note) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.listLocked(notes)
}

// listLocked builds the union. Caller holds the mutex (either mode).
func (d *Directory) listLocked(notes []storage.Note) []string {
	confirmed := make([]string, 0, len(notes))
	for _, n := range notes {
		confirmed = append(confirmed, noteTopic(n))
	}
	return d.unionLocked(confirmed)
}

// unionLocked merges confirmed topic names with the declared-empty set,
// de-duplicated and sorted. Caller holds the mutex (either mode).
func (d *Directory) unionLocked(confirmed []string) []string {
	seen := make(map[string]struct{}, len(confirmed)+len(d.declaredEmpty))
	for _, name := range confirmed {
		seen[name] = struct{}{}
	}
	for name := range d.declaredEmpty {
		seen[name] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ListStored returns the same union as List but sources the confirmed topics
// from the store's distinct-topic query, so callers serving only topic names
// need not load every note first.
func (d *Directory) ListStored(ctx context.Context) ([]string, error) {
	confirmed, err := d.store.DistinctTopics(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unionLocked(confirmed), nil
}

// Declare registers a new, still-empty topic name. The name is checked
// against the cached union first, which includes this session's declared-empty
// names, then re-validated by the store against confirmed topics only. A name
// another session declared but never filled is unknown to both checks and is
// accepted again.
func (d *Directory) Declare(ctx context.Context, notes []storage.Note, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	// The write lock spans check and insert so two racing declarations of the
	// same name cannot both pass the union check.
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.listLocked(notes) {
		if existing == name {
			return "", storage.ErrTopicExists
		}
	}
	if err := d.store.DeclareTopic(ctx, name); err != nil {
		return "", err
	}

	d.declaredEmpty[name] = struct{}{}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "topic declared", "topic", name)
	return name, nil
}

// Move assigns a note to a different topic through the store. Moving a note
// onto its current topic is a no-op returning the note unchanged, which also
// makes repeating a move idempotent. A blank target means the default topic.
func (d *Directory) Move(ctx context.Context, note *storage.Note, newTopic string) (*storage.Note, error) {
	newTopic = strings.TrimSpace(newTopic)
	if newTopic == "" {
		newTopic = storage.DefaultTopic
	}
	if noteTopic(*note) == newTopic {
		return note, nil
	}

	moved, err := d.store.MoveTopic(ctx, note.ID, newTopic)
	if err != nil {
		return nil, err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "note moved", "note_id", note.ID, "topic", newTopic)
	return moved, nil
}

// Group buckets notes for display. GroupByTopic produces one group per
// distinct topic sorted by name; zero-note groups appear only for this
// session's declared-empty names.
func (d *Directory) Group(notes []storage.Note, mode GroupMode) []Group {
	if mode != GroupByTopic {
		return []Group{{Topic: AllNotesGroup, Notes: notes}}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	buckets := make(map[string][]storage.Note)
	for _, n := range notes {
		topic := noteTopic(n)
		buckets[topic] = append(buckets[topic], n)
	}
	for name := range d.declaredEmpty {
		if _, ok := buckets[name]; !ok {
			buckets[name] = nil
		}
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, Group{Topic: name, Notes: buckets[name]})
	}
	return groups
}

// Filter returns the notes whose title or content contains term,
// case-insensitively. A blank term keeps every note. The term always arrives
// as an explicit argument; the directory never inspects UI state.
func Filter(notes []storage.Note, term string) []storage.Note {
	term = strings.TrimSpace(term)
	if term == "" {
		return notes
	}
	term = strings.ToLower(term)

	out := make([]storage.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), term) ||
			strings.Contains(strings.ToLower(n.Content), term) {
			out = append(out, n)
		}
	}
	return out
}

func noteTopic(n storage.Note) string {
	if strings.TrimSpace(n.Topic) == "" {
		return storage.DefaultTopic
	}
	return n.Topic
}
