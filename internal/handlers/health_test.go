package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"voicenotes/internal/storage"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealthHandler(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "health.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	handler := NewHealthHandler(db)

	t.Run("healthy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
		}
		var resp HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "healthy" || resp.Checks["note_store"] != "ok" {
			t.Errorf("response = %+v, want healthy note_store", resp)
		}
	})

	t.Run("unhealthy after the database closes", func(t *testing.T) {
		_ = db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %v, want %v", w.Code, http.StatusServiceUnavailable)
		}
		var resp HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "unhealthy" {
			t.Errorf("response status = %q, want unhealthy", resp.Status)
		}
	})
}
