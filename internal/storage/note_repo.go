package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks voicenotes/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicenotes/internal/content"
)

var (
	// ErrNotFound is returned when a note is not found.
	ErrNotFound = errors.New("note not found")
	// ErrTopicExists is returned when a topic name is already in use.
	ErrTopicExists = errors.New("topic already exists")
)

// timeLayout is a fixed-width UTC timestamp format. Fixed width keeps the
// column's lexicographic order equal to chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// NoteStore defines the persistence contract the core relies on.
type NoteStore interface {
	// List returns all notes ordered by most recently updated first.
	List(ctx context.Context) ([]Note, error)
	// ListByTopic returns the notes carrying exactly the given topic,
	// most recently updated first.
	ListByTopic(ctx context.Context, topic string) ([]Note, error)
	// Get returns one note by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Note, error)
	// Create stores a new note. The store assigns id and updated_at. A blank
	// content type defaults to plain, a blank topic to DefaultTopic.
	Create(ctx context.Context, title, body string, typ content.Type, topic string) (*Note, error)
	// Update applies a partial update and bumps updated_at.
	// Returns ErrNotFound if absent.
	Update(ctx context.Context, id string, fields UpdateFields) (*Note, error)
	// Delete removes a note. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// MoveTopic reassigns a note's topic (blank means DefaultTopic) and bumps
	// updated_at. Returns ErrNotFound if absent.
	MoveTopic(ctx context.Context, id, topic string) (*Note, error)
	// DistinctTopics returns the confirmed topics: every distinct non-blank
	// topic some note currently carries, sorted.
	DistinctTopics(ctx context.Context) ([]string, error)
	// DeclareTopic validates that no note uses the name yet. Returns
	// ErrTopicExists on a clash. Nothing is persisted on success: empty
	// topics exist only in the declaring session's memory.
	DeclareTopic(ctx context.Context, name string) error
}

// NoteRepo provides note operations over SQLite.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

const noteColumns = "id, title, content, content_type, topic, updated_at"

// List returns all notes, most recently updated first.
func (r *NoteRepo) List(ctx context.Context) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes ORDER BY updated_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanNotes(rows)
}

// ListByTopic returns the notes carrying exactly the given topic.
func (r *NoteRepo) ListByTopic(ctx context.Context, topic string) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE topic = ? ORDER BY updated_at DESC, rowid DESC", topic)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes by topic: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanNotes(rows)
}

// Get returns one note by id. Returns ErrNotFound if absent.
func (r *NoteRepo) Get(ctx context.Context, id string) (*Note, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", id)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	return note, nil
}

// Create stores a new note, assigning its id and timestamp.
func (r *NoteRepo) Create(ctx context.Context, title, body string, typ content.Type, topic string) (*Note, error) {
	if typ == "" {
		typ = content.TypePlain
	}
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}

	note := &Note{
		ID:          uuid.New().String(),
		Title:       title,
		Content:     body,
		ContentType: typ,
		Topic:       topic,
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (id, title, content, content_type, topic, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		note.ID, note.Title, note.Content, string(note.ContentType), note.Topic, note.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}

	return note, nil
}

// Update applies a partial update and bumps updated_at.
func (r *NoteRepo) Update(ctx context.Context, id string, fields UpdateFields) (*Note, error) {
	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(timeLayout)}

	if fields.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *fields.Content)
	}
	if fields.ContentType != nil {
		set = append(set, "content_type = ?")
		args = append(args, string(*fields.ContentType))
	}
	if fields.Topic != nil {
		set = append(set, "topic = ?")
		args = append(args, *fields.Topic)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, id)
}

// Delete removes a note. Returns ErrNotFound if absent.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MoveTopic reassigns a note's topic and bumps updated_at.
func (r *NoteRepo) MoveTopic(ctx context.Context, id, topic string) (*Note, error) {
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	return r.Update(ctx, id, UpdateFields{Topic: &topic})
}

// DistinctTopics returns every distinct non-blank topic in use, sorted.
func (r *NoteRepo) DistinctTopics(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT topic FROM notes WHERE TRIM(topic) != '' ORDER BY topic")
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topics: %w", err)
	}
	return topics, nil
}

// DeclareTopic validates a new topic name against confirmed topics only.
// Names that were merely declared by another session are not recorded here
// and therefore do not conflict.
func (r *NoteRepo) DeclareTopic(ctx context.Context, name string) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE topic = ?", name).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check topic: %w", err)
	}
	if count > 0 {
		return ErrTopicExists
	}
	return nil
}

// scanTarget is the common scan surface of *sql.Row and *sql.Rows.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanNote(row scanTarget) (*Note, error) {
	var note Note
	var typ, updatedAtStr string

	if err := row.Scan(&note.ID, &note.Title, &note.Content, &typ, &note.Topic, &updatedAtStr); err != nil {
		return nil, err
	}
	note.ContentType = content.Type(typ)

	var err error
	note.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr)
	if err != nil {
		// Rows written by older schemas used plain DATETIME strings.
		note.UpdatedAt, err = time.Parse("2006-01-02 15:04:05", updatedAtStr)
		if err != nil {
			note.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
			}
		}
	}
	return &note, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}
	return notes, nil
}
