package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"voicenotes/internal/capture"
	"voicenotes/internal/content"
	"voicenotes/internal/service"
	"voicenotes/internal/speech"
	"voicenotes/internal/storage"
	"voicenotes/internal/storage/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSynchronizer_Apply_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockNoteStore(ctrl)

	created := &storage.Note{
		ID:          "n1",
		Title:       "hello world...",
		Content:     "<p>hello world</p>",
		ContentType: content.TypeRich,
		Topic:       storage.DefaultTopic,
	}
	store.EXPECT().
		Create(gomock.Any(), "hello world...", "<p>hello world</p>", content.TypeRich, "").
		Return(created, nil)

	sync := service.NewSynchronizer(store)
	got, err := sync.Apply(context.Background(), capture.Action{
		Kind:       capture.ActionCreate,
		Transcript: "hello world",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.ID != "n1" {
		t.Errorf("Apply() note id = %q, want n1", got.ID)
	}
}

func TestSynchronizer_Apply_Append(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockNoteStore(ctrl)

	existing := &storage.Note{
		ID:          "n1",
		Title:       "hello world...",
		Content:     "<p>hello world</p>",
		ContentType: content.TypeRich,
	}
	store.EXPECT().Get(gomock.Any(), "n1").Return(existing, nil)

	wantBody := "<p>hello world</p><p>and more</p>"
	store.EXPECT().
		Update(gomock.Any(), "n1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, fields storage.UpdateFields) (*storage.Note, error) {
			if fields.Content == nil || *fields.Content != wantBody {
				t.Errorf("Update() content = %v, want %q", fields.Content, wantBody)
			}
			if fields.ContentType == nil || *fields.ContentType != content.TypeRich {
				t.Errorf("Update() content type = %v, want rich", fields.ContentType)
			}
			if fields.Title != nil {
				t.Error("Update() must not touch the title on append")
			}
			updated := *existing
			updated.Content = wantBody
			return &updated, nil
		})

	sync := service.NewSynchronizer(store)
	got, err := sync.Apply(context.Background(), capture.Action{
		Kind:       capture.ActionAppend,
		TargetID:   "n1",
		Transcript: "and more",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Content != wantBody {
		t.Errorf("Apply() content = %q, want %q", got.Content, wantBody)
	}
}

func TestSynchronizer_Apply_AppendMissingTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockNoteStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "gone").Return(nil, storage.ErrNotFound)

	sync := service.NewSynchronizer(store)
	_, err := sync.Apply(context.Background(), capture.Action{
		Kind:       capture.ActionAppend,
		TargetID:   "gone",
		Transcript: "orphan words",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Apply() error = %v, want ErrNotFound", err)
	}
}

func TestSynchronizer_OpenForEditing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockNoteStore(ctrl)

	plain := &storage.Note{
		ID:          "n1",
		Title:       "legacy",
		Content:     "line one\nline two",
		ContentType: content.TypePlain,
	}
	store.EXPECT().Get(gomock.Any(), "n1").Return(plain, nil)

	sync := service.NewSynchronizer(store)
	got, err := sync.OpenForEditing(context.Background(), "n1")
	if err != nil {
		t.Fatalf("OpenForEditing() error = %v", err)
	}
	if got.Content != "<p>line one</p><p>line two</p>" {
		t.Errorf("OpenForEditing() content = %q, want migrated paragraphs", got.Content)
	}
	if got.ContentType != content.TypeRich {
		t.Errorf("OpenForEditing() type = %q, want rich", got.ContentType)
	}
}

func TestSynchronizer_SaveFromEditor(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*mocks.MockNoteStore)
		id        string
		title     string
		body      string
		wantErr   bool
	}{
		{
			name:    "blank title rejected",
			title:   "  ",
			body:    "<p>body</p>",
			wantErr: true,
		},
		{
			name:    "blank content rejected",
			title:   "title",
			body:    "\t ",
			wantErr: true,
		},
		{
			name: "empty id creates a plain note",
			mockSetup: func(store *mocks.MockNoteStore) {
				store.EXPECT().
					Create(gomock.Any(), "title", "body text", content.TypePlain, "").
					Return(&storage.Note{ID: "new"}, nil)
			},
			title: "title",
			body:  "body text",
		},
		{
			name: "existing id always saves as rich",
			mockSetup: func(store *mocks.MockNoteStore) {
				store.EXPECT().
					Update(gomock.Any(), "n1", gomock.Any()).
					DoAndReturn(func(_ context.Context, id string, fields storage.UpdateFields) (*storage.Note, error) {
						if fields.ContentType == nil || *fields.ContentType != content.TypeRich {
							t.Errorf("Update() content type = %v, want rich", fields.ContentType)
						}
						return &storage.Note{ID: "n1"}, nil
					})
			},
			id:    "n1",
			title: "title",
			body:  "<p>body</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			store := mocks.NewMockNoteStore(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(store)
			}

			sync := service.NewSynchronizer(store)
			_, err := sync.SaveFromEditor(context.Background(), tt.id, tt.title, tt.body)

			if tt.wantErr {
				var validationErr *service.ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("SaveFromEditor() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("SaveFromEditor() unexpected error: %v", err)
			}
		})
	}
}

// Drives a full capture round trip: a scripted engine produces results, the
// session folds them and emits an action on end, and the synchronizer persists
// it the way the HTTP layer would.
func TestSynchronizer_EndToEndCapture(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockNoteStore(ctrl)
	store.EXPECT().
		Create(gomock.Any(), "hello world...", "<p>hello world</p>", content.TypeRich, "").
		Return(&storage.Note{ID: "n1", Title: "hello world..."}, nil)

	rec := &speech.Scripted{
		Script: []speech.Event{
			{Kind: speech.EventResult, Segments: []speech.Segment{{Text: "hello"}}},
			{Kind: speech.EventResult, Segments: []speech.Segment{{Text: "hello world"}}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sync := service.NewSynchronizer(store)
	saved := make(chan error, 1)
	session := capture.NewSession(rec, func(a capture.Action) {
		_, err := sync.Apply(ctx, a)
		saved <- err
	})

	if err := session.StartCreate(ctx); err != nil {
		t.Fatalf("StartCreate() error = %v", err)
	}
	go session.Pump(ctx)

	if err := session.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case err := <-saved:
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the capture to persist")
	}
	if got := session.State(); got != capture.StateIdle {
		t.Errorf("State() = %v, want idle", got)
	}
}
