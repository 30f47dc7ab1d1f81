package loader

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/cms-admin/internal/cmsconfig"
	"github.com/eugenenazirov/cms-admin/internal/storage"
)

func TestReloaderPublishesSnapshot(t *testing.T) {
	t.Parallel()

	path := writeDocument(t, validDocument)
	store := storage.NewMemoryStorage()
	r := NewReloader(New(), FileSource(path), store, zaptest.NewLogger(t))

	snapshot, err := r.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if snapshot.Source != path || snapshot.LoadedAt.IsZero() {
		t.Fatalf("unexpected snapshot metadata: %+v", snapshot)
	}

	current, err := store.Current()
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if _, ok := current.Config.Record("user"); !ok {
		t.Fatalf("expected stored config to contain user record")
	}
	if r.Source().Location() != path {
		t.Fatalf("unexpected source %s", r.Source())
	}
}

func TestReloaderKeepsPreviousSnapshotOnFailure(t *testing.T) {
	t.Parallel()

	path := writeDocument(t, validDocument)
	store := storage.NewMemoryStorage()
	r := NewReloader(New(), FileSource(path), store, zaptest.NewLogger(t))

	first, err := r.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}

	if err := os.WriteFile(path, []byte("site: []\n"), 0o600); err != nil {
		t.Fatalf("rewrite document: %v", err)
	}
	if _, err := r.Reload(context.Background()); !errors.Is(err, cmsconfig.ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}

	current, err := store.Current()
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if !current.LoadedAt.Equal(first.LoadedAt) {
		t.Fatalf("expected previous snapshot to remain active")
	}
}
