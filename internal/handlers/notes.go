package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"voicenotes/internal/content"
	"voicenotes/internal/contextutil"
	"voicenotes/internal/service"
	"voicenotes/internal/storage"
	"voicenotes/internal/topics"
)

// NotesHandler handles HTTP requests for note CRUD and the editor paths.
type NotesHandler struct {
	store        storage.NoteStore
	synchronizer *service.Synchronizer
	directory    *topics.Directory
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(store storage.NoteStore, synchronizer *service.Synchronizer, directory *topics.Directory) *NotesHandler {
	return &NotesHandler{
		store:        store,
		synchronizer: synchronizer,
		directory:    directory,
	}
}

// CreateNoteRequest is the payload for creating a note.
type CreateNoteRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	Topic       string `json:"topic"`
}

// UpdateNoteRequest is the payload for a partial note update.
// Absent fields are left unchanged.
type UpdateNoteRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	ContentType *string `json:"contentType"`
	Topic       *string `json:"topic"`
}

// MoveNoteRequest is the payload for moving a note to another topic.
type MoveNoteRequest struct {
	Topic string `json:"topic"`
}

// EditorSaveRequest is the payload the editor submits on save.
type EditorSaveRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns all notes, optionally filtered by the q search term.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := h.store.List(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list notes")
		return
	}
	notes = topics.Filter(notes, r.URL.Query().Get("q"))

	writeJSON(ctx, w, http.StatusOK, toNoteResponses(notes))
}

// Create stores a new note.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	note, err := h.store.Create(ctx, req.Title, req.Content, content.Type(req.ContentType), req.Topic)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to create note")
		return
	}

	logger.InfoContext(ctx, "note created", "note_id", note.ID, "topic", note.Topic)
	writeJSON(ctx, w, http.StatusCreated, toNoteResponse(note))
}

// Get returns one note by id.
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to load note")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toNoteResponse(note))
}

// Update applies a partial update to a note.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := storage.UpdateFields{
		Title:   req.Title,
		Content: req.Content,
		Topic:   req.Topic,
	}
	if req.ContentType != nil {
		typ := content.Type(*req.ContentType)
		fields.ContentType = &typ
	}

	note, err := h.store.Update(ctx, chi.URLParam(r, "id"), fields)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to update note")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toNoteResponse(note))
}

// Delete removes a note.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(ctx, id); err != nil {
		writeServiceError(ctx, w, err, "Failed to delete note")
		return
	}

	logger.InfoContext(ctx, "note deleted", "note_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// MoveTopic reassigns a note's topic through the directory, so moving a note
// onto its current topic stays a no-op.
func (h *NotesHandler) MoveTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to load note")
		return
	}

	moved, err := h.directory.Move(ctx, note, req.Topic)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to move note")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toNoteResponse(moved))
}

// EditOpen returns a note migrated to the rich representation for editing.
func (h *NotesHandler) EditOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.synchronizer.OpenForEditing(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to open note for editing")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toNoteResponse(note))
}

// EditSave persists an editor submission.
func (h *NotesHandler) EditSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req EditorSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.synchronizer.SaveFromEditor(ctx, chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to save note")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toNoteResponse(note))
}
