package service

import (
	"context"
	"strings"

	"voicenotes/internal/capture"
	"voicenotes/internal/content"
	"voicenotes/internal/contextutil"
	"voicenotes/internal/storage"
)

// Synchronizer turns finished capture sessions into Note Store mutations and
// backs the editor's open/save paths. Each operation issues at most one store
// mutation; failures surface to the caller without retries and without
// advancing any local state.
type Synchronizer struct {
	store storage.NoteStore
}

// NewSynchronizer creates a new Synchronizer.
func NewSynchronizer(store storage.NoteStore) *Synchronizer {
	return &Synchronizer{store: store}
}

// Apply persists one synthesis action. A create action builds a fresh rich
// note from the transcript; an append action merges the transcript into the
// target note under its existing content type.
func (s *Synchronizer) Apply(ctx context.Context, action capture.Action) (*storage.Note, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if action.Kind == capture.ActionAppend {
		note, err := s.store.Get(ctx, action.TargetID)
		if err != nil {
			return nil, WrapError(err, "failed to load append target")
		}
		body, typ := content.Append(note.Content, note.ContentType, action.Transcript)
		updated, err := s.store.Update(ctx, note.ID, storage.UpdateFields{
			Content:     &body,
			ContentType: &typ,
		})
		if err != nil {
			return nil, WrapError(err, "failed to append transcript")
		}
		logger.InfoContext(ctx, "transcript appended to note",
			"note_id", note.ID, "transcript_length", len(action.Transcript))
		return updated, nil
	}

	title, body, typ := content.FromTranscript(action.Transcript)
	created, err := s.store.Create(ctx, title, body, typ, "")
	if err != nil {
		return nil, WrapError(err, "failed to create note from transcript")
	}
	logger.InfoContext(ctx, "note created from transcript",
		"note_id", created.ID, "transcript_length", len(action.Transcript))
	return created, nil
}

// OpenForEditing loads a note with its content migrated to the rich
// representation the editor works in. Nothing is persisted here; the migrated
// form is written back by the next editor save.
func (s *Synchronizer) OpenForEditing(ctx context.Context, id string) (*storage.Note, error) {
	note, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Content, note.ContentType = content.MigrateForEditing(note.Content, note.ContentType)
	return note, nil
}

// SaveFromEditor persists an editor submission. Blank titles and blank
// content are rejected before any store call. Saves of an existing note
// always persist rich content, whatever the note's original type: plain is a
// read-and-migrate-once format. A new note (empty id) is created with the
// store's default plain type, matching raw editor text.
func (s *Synchronizer) SaveFromEditor(ctx context.Context, id, title, body string) (*storage.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Field: "content", Message: "cannot be empty"}
	}

	if id == "" {
		return s.store.Create(ctx, title, body, content.TypePlain, "")
	}

	typ := content.TypeRich
	return s.store.Update(ctx, id, storage.UpdateFields{
		Title:       &title,
		Content:     &body,
		ContentType: &typ,
	})
}
