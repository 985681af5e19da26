package storage

import (
	"time"

	"voicenotes/internal/content"
)

// DefaultTopic groups notes that were never assigned a topic.
const DefaultTopic = "General"

// Note is a stored note.
type Note struct {
	ID          string // UUID, assigned by the store, immutable
	Title       string
	Content     string
	ContentType content.Type
	Topic       string // free text, matched case-sensitively; never a foreign key
	UpdatedAt   time.Time
}

// UpdateFields is a partial note update; nil fields are left unchanged.
// The store bumps UpdatedAt on every update regardless.
type UpdateFields struct {
	Title       *string
	Content     *string
	ContentType *content.Type
	Topic       *string
}
