// ABOUTME: JSON-file storage backend kept in the XDG config directory
// ABOUTME: Rewrites the whole document on every change with owner-only permissions

package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// stateFileName is the document holding all persisted keys
const stateFileName = "session.json"

// FileStore persists keys as a single JSON object on disk
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// path returns the location of the state document
func (fs *FileStore) path() string {
	return filepath.Join(fs.dir, stateFileName)
}

// load reads the document; a missing or corrupt file reads as empty
func (fs *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(fs.path())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		// Invalid JSON, start fresh
		slog.Warn("Discarding unreadable state file", "path", fs.path(), "error", err)
		return map[string]string{}, nil
	}
	return values, nil
}

// save writes the document atomically via a temp file
func (fs *FileStore) save(values map[string]string) error {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp := fs.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path())
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.save(values)
}

// Remove deletes keys; the file is removed once it holds nothing
func (fs *FileStore) Remove(keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		if err := os.Remove(fs.path()); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return fs.save(values)
}

func (fs *FileStore) Close() error { return nil }
