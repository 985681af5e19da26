package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voicenotes/internal/handlers"
	"voicenotes/internal/service"
	"voicenotes/internal/storage"
	"voicenotes/internal/topics"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store        storage.NoteStore
	Synchronizer *service.Synchronizer
	Directory    *topics.Directory
	DB           *sql.DB
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	notes := handlers.NewNotesHandler(deps.Store, deps.Synchronizer, deps.Directory)
	topicsHandler := handlers.NewTopicsHandler(deps.Store, deps.Directory)
	view := handlers.NewViewHandler(deps.Store)

	r.Route("/api", func(r chi.Router) {
		if deps.DB != nil {
			r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.DB))
		}
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notes.List)
			r.Post("/", notes.Create)
			r.Get("/overview", topicsHandler.Overview)
			r.Get("/topics/list", topicsHandler.List)
			r.Post("/topics/create", topicsHandler.Declare)
			r.Get("/topics/{topic}", topicsHandler.NotesByTopic)
			r.Get("/{id}", notes.Get)
			r.Put("/{id}", notes.Update)
			r.Delete("/{id}", notes.Delete)
			r.Patch("/{id}/topic", notes.MoveTopic)
			r.Get("/{id}/edit", notes.EditOpen)
			r.Put("/{id}/edit", notes.EditSave)
		})
	})

	r.Get("/notes/{id}/view", view.ServeHTTP)

	return r
}
