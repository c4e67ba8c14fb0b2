// ABOUTME: Tests for durable storage backends
// ABOUTME: Runs the same contract against file, sqlite and memory stores

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"file":   NewFileStore(t.TempDir()),
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(KeyAccessToken); err != nil || ok {
				t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
			}

			if err := s.Set(KeyAccessToken, "tok-1"); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			if err := s.Set(KeyUser, `{"name":"Ada"}`); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			if err := s.Set(KeyAccessToken, "tok-2"); err != nil {
				t.Fatalf("Set() overwrite error: %v", err)
			}

			v, ok, err := s.Get(KeyAccessToken)
			if err != nil || !ok || v != "tok-2" {
				t.Errorf("expected tok-2, got %q ok=%v err=%v", v, ok, err)
			}

			if err := s.Remove(KeyAccessToken, KeyUser); err != nil {
				t.Fatalf("Remove() error: %v", err)
			}
			for _, k := range []string{KeyAccessToken, KeyUser} {
				if _, ok, _ := s.Get(k); ok {
					t.Errorf("expected %s removed", k)
				}
			}

			// Removing again is a no-op
			if err := s.Remove(KeyAccessToken); err != nil {
				t.Errorf("second Remove() error: %v", err)
			}
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	if err := NewFileStore(dir).Set(KeyAccessToken, "tok"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	v, ok, err := NewFileStore(dir).Get(KeyAccessToken)
	if err != nil || !ok || v != "tok" {
		t.Errorf("expected value from disk, got %q ok=%v err=%v", v, ok, err)
	}

	info, err := os.Stat(filepath.Join(dir, stateFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileStoreRemovesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	fs.Set(KeyAccessToken, "tok")
	fs.Remove(KeyAccessToken)

	if _, err := os.Stat(filepath.Join(dir, stateFileName)); !os.IsNotExist(err) {
		t.Errorf("expected state file to be removed, got %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, stateFileName), []byte("not json"), 0600)

	fs := NewFileStore(dir)
	if _, ok, err := fs.Get(KeyAccessToken); err != nil || ok {
		t.Errorf("expected corrupt file to read as empty, got ok=%v err=%v", ok, err)
	}
	if err := fs.Set(KeyAccessToken, "tok"); err != nil {
		t.Errorf("expected Set to recover, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{BackendFile, false},
		{BackendMemory, false},
		{BackendSQLite, false},
		{"redis", true},
	}

	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			s, err := Open(tc.backend, t.TempDir())
			if tc.wantErr {
				if err == nil {
					t.Error("expected error for unknown backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			s.Close()
		})
	}
}
