package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"voicenotes/internal/content"
	"voicenotes/internal/contextutil"
	"voicenotes/internal/storage"
)

// ViewHandler serves a note as a rendered HTML page. Rich content is already
// a paragraph sequence and is embedded as-is; plain content is rendered
// through the markdown pipeline.
type ViewHandler struct {
	store    storage.NoteStore
	markdown goldmark.Markdown
	template *template.Template
}

// viewPageData holds template data for rendered note pages.
type viewPageData struct {
	Title     string
	Topic     string
	UpdatedAt string
	Content   template.HTML
}

// NewViewHandler creates a new handler for rendered note pages.
func NewViewHandler(store storage.NoteStore) *ViewHandler {
	tmpl := template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 720px;
      line-height: 1.7;
    }
    header {
      margin-bottom: 1.5rem;
      border-bottom: 1px solid #ddd;
      padding-bottom: 1rem;
    }
    h1 {
      margin-top: 0;
      font-size: 1.6rem;
    }
    .meta {
      color: #666;
      font-size: 0.9rem;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">Topic: {{.Topic}} &middot; Updated: {{.UpdatedAt}}</p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

	return &ViewHandler{
		store: store,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
				extension.Typographer,
			),
		),
		template: tmpl,
	}
}

// ServeHTTP renders the requested note as an HTML page.
func (h *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	note, err := h.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if err == storage.ErrNotFound {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "failed to load note", "error", err)
		http.Error(w, "failed to load note", http.StatusInternalServerError)
		return
	}

	body, err := h.renderBody(note)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render note", "note_id", note.ID, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	pageData := viewPageData{
		Title:     note.Title,
		Topic:     note.Topic,
		UpdatedAt: note.UpdatedAt.Format("2006-01-02 15:04"),
		Content:   body,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "note_id", note.ID, "error", err)
	}
}

func (h *ViewHandler) renderBody(note *storage.Note) (template.HTML, error) {
	if note.ContentType == content.TypeRich {
		// Rich content is a sequence of paragraph fragments built by the
		// content package; paragraph text was escaped when wrapped.
		return template.HTML(note.Content), nil
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(note.Content), &buf); err != nil {
		return "", fmt.Errorf("convert note body: %w", err)
	}
	return template.HTML(buf.String()), nil
}
