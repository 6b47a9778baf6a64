package savestore_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/diegofer25/neon-siege-sub003/internal/savestore"
)

func openBackends(t *testing.T) map[string]savestore.Store {
	t.Helper()
	dir := t.TempDir()

	bolt, err := savestore.OpenBolt(filepath.Join(dir, "saves.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { _ = bolt.Close() })

	sqlite, err := savestore.OpenSQLite(filepath.Join(dir, "saves.sqlite"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]savestore.Store{
		"memory": savestore.NewMemory(),
		"bbolt":  bolt,
		"sqlite": sqlite,
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			payload := []byte(`{"version":3,"savedAt":12345}`)
			if err := backend.Put(ctx, "player-1", payload); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := backend.Get(ctx, "player-1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !bytes.Equal(payload, got) {
				t.Fatalf("payload mismatch: expected %s, got %s", payload, got)
			}

			// Overwrite replaces the blob wholesale.
			updated := []byte(`{"version":3,"savedAt":99999}`)
			if err := backend.Put(ctx, "player-1", updated); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err = backend.Get(ctx, "player-1")
			if err != nil {
				t.Fatalf("get after overwrite: %v", err)
			}
			if !bytes.Equal(updated, got) {
				t.Fatalf("expected overwritten payload, got %s", got)
			}
		})
	}
}

func TestBackendsReportNotFound(t *testing.T) {
	ctx := context.Background()
	for name, backend := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := backend.Get(ctx, "missing"); !errors.Is(err, savestore.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := backend.Put(ctx, "gone", []byte("x")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := backend.Delete(ctx, "gone"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := backend.Get(ctx, "gone"); !errors.Is(err, savestore.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestEmptyKeyIsRejected(t *testing.T) {
	ctx := context.Background()
	mem := savestore.NewMemory()
	if err := mem.Put(ctx, " ", []byte("x")); err == nil {
		t.Fatalf("expected blank key to be rejected")
	}
	if _, err := mem.Get(ctx, ""); err == nil || errors.Is(err, savestore.ErrNotFound) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
