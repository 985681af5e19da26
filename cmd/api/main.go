package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"voicenotes/internal/config"
	"voicenotes/internal/http"
	"voicenotes/internal/service"
	"voicenotes/internal/storage"
	"voicenotes/internal/topics"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	// Initialize the note store
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Note store initialized", "path", cfg.DBPath)

	noteRepo := storage.NewNoteRepo(db)

	// Topic directory: the declared-empty set lives only in this process and
	// starts fresh on every boot.
	directory := topics.NewDirectory(noteRepo)

	synchronizer := service.NewSynchronizer(noteRepo)

	deps := &http.Deps{
		Store:        noteRepo,
		Synchronizer: synchronizer,
		Directory:    directory,
		DB:           db,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
