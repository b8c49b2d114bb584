package sessionfile_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"task-tracker-client/adapters/sessionfile"
	"task-tracker-client/core"
)

func newStorage(t *testing.T) *sessionfile.Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state", "session.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return sessionfile.New(path, logger)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	user := core.User{UserID: "u-1", FullName: "Ada Lovelace", Email: "ada@example.com"}
	in := core.SessionState{Token: "tok-123", CurrentUser: &user, IsLogin: true}

	if err := storage.Save(in); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	out, ok, err := storage.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected persisted state found")
	}
	if out.Token != "tok-123" || !out.IsLogin {
		t.Fatalf("unexpected state: %+v", out)
	}
	if out.CurrentUser == nil || out.CurrentUser.UserID != "u-1" {
		t.Fatalf("expected current user round-tripped, got %+v", out.CurrentUser)
	}
}

func TestLoad_NothingPersisted(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)

	_, ok, err := storage.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a missing file")
	}
}

func TestLoad_CorruptFileTreatedAsLoggedOut(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to prepare corrupt file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage := sessionfile.New(path, logger)

	_, ok, err := storage.Load()
	if err != nil {
		t.Fatalf("expected corrupt file to be non-fatal, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a corrupt file")
	}
}

func TestClear_RemovesStateAndIsIdempotent(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	if err := storage.Save(core.SessionState{Token: "tok-123", IsLogin: true}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := storage.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if _, ok, _ := storage.Load(); ok {
		t.Fatalf("expected state gone after clear")
	}

	// second clear is a no-op
	if err := storage.Clear(); err != nil {
		t.Fatalf("expected idempotent clear, got %v", err)
	}
}
