package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"voicenotes/internal/contextutil"
	"voicenotes/internal/service"
	"voicenotes/internal/storage"
	"voicenotes/internal/topics"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NoteResponse is the wire representation of a note.
type NoteResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	Topic       string `json:"topic"`
	UpdatedAt   string `json:"updatedAt"`
}

func toNoteResponse(n *storage.Note) NoteResponse {
	return NoteResponse{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		ContentType: string(n.ContentType),
		Topic:       n.Topic,
		UpdatedAt:   n.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toNoteResponses(notes []storage.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}
	return out
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, ErrorResponse{Error: message})
}

// writeServiceError maps core errors onto HTTP status codes.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(ctx, w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, topics.ErrEmptyName):
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, "note not found")
	case errors.Is(err, storage.ErrTopicExists):
		writeError(ctx, w, http.StatusConflict, "topic already exists")
	default:
		logger.ErrorContext(ctx, fallback, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, fallback)
	}
}
