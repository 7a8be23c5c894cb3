package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "sub", "session.json"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}

	rec := &Record{Token: "tok-1", Identity: "alice", UpdatedAt: 42}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Token != "tok-1" || got.Identity != "alice" || got.UpdatedAt != 42 {
		t.Errorf("Load = %+v", got)
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Record{Token: "old"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(ctx, &Record{Token: "new"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil || got.Token != "new" {
		t.Errorf("Load = %+v, %v; want replaced record", got, err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete on empty store failed: %v", err)
	}

	if err := s.Save(ctx, &Record{Token: "tok"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete = %v, want ErrNotFound", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{half a rec"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewFileStore(path)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load of corrupt file = %v, want ErrNotFound", err)
	}
}

func TestFileStorePermissions(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Record{Token: "tok"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("file mode = %o, want no group/other access", perm)
	}
}
