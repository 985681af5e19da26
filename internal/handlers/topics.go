package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"voicenotes/internal/contextutil"
	"voicenotes/internal/storage"
	"voicenotes/internal/topics"
)

// TopicsHandler handles HTTP requests for the topic directory.
type TopicsHandler struct {
	store     storage.NoteStore
	directory *topics.Directory
}

// NewTopicsHandler creates a new TopicsHandler.
func NewTopicsHandler(store storage.NoteStore, directory *topics.Directory) *TopicsHandler {
	return &TopicsHandler{store: store, directory: directory}
}

// DeclareTopicRequest is the payload for declaring a new empty topic.
type DeclareTopicRequest struct {
	TopicName string `json:"topicName"`
}

// DeclareTopicResponse confirms a declared topic.
type DeclareTopicResponse struct {
	Topic string `json:"topic"`
}

// GroupResponse is one topic bucket of notes in the overview.
type GroupResponse struct {
	Topic string         `json:"topic"`
	Notes []NoteResponse `json:"notes"`
}

// List returns the full topic union: confirmed topics from the store plus the
// names this process declared without notes.
func (h *TopicsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topicNames, err := h.directory.ListStored(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list topics")
		return
	}

	writeJSON(ctx, w, http.StatusOK, topicNames)
}

// Declare registers a new empty topic name.
func (h *TopicsHandler) Declare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req DeclareTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notes, err := h.store.List(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to declare topic")
		return
	}

	name, err := h.directory.Declare(ctx, notes, req.TopicName)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to declare topic")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, DeclareTopicResponse{Topic: name})
}

// NotesByTopic returns the notes carrying exactly the given topic.
func (h *TopicsHandler) NotesByTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topic, err := url.PathUnescape(chi.URLParam(r, "topic"))
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid topic encoding")
		return
	}

	notes, err := h.store.ListByTopic(ctx, topic)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list notes by topic")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toNoteResponses(notes))
}

// Overview returns notes bucketed for the overview screen. groupBy=topic
// groups per topic, anything else yields the single all-notes group; q
// filters before grouping.
func (h *TopicsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := h.store.List(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to build overview")
		return
	}
	notes = topics.Filter(notes, r.URL.Query().Get("q"))

	mode := topics.GroupNone
	if r.URL.Query().Get("groupBy") == "topic" {
		mode = topics.GroupByTopic
	}

	groups := h.directory.Group(notes, mode)
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupResponse{Topic: g.Topic, Notes: toNoteResponses(g.Notes)})
	}

	writeJSON(ctx, w, http.StatusOK, out)
}
