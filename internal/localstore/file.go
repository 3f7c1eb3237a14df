package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the document used when no path is configured.
const DefaultFile = "storage.json"

// FileStore keeps every key in one JSON document on disk. The document is
// rewritten on every change.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// OpenFile loads path, or starts empty when it does not exist.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultFile
	}
	fs := &FileStore{path: path}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the document path.
func (fs *FileStore) Path() string { return fs.path }

func (fs *FileStore) load() error {
	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.data = make(map[string]json.RawMessage)
			return nil
		}
		return fmt.Errorf("open %s: %w", fs.path, err)
	}
	defer f.Close()

	data := make(map[string]json.RawMessage)
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode %s: %w", fs.path, err)
	}
	fs.data = data
	return nil
}

func (fs *FileStore) save() error {
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	b, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	// owner-only, it holds the user directory
	if err := os.WriteFile(fs.path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", fs.path, err)
	}
	return nil
}

// Get implements Store.
func (fs *FileStore) Get(_ context.Context, key string, v any) (bool, error) {
	fs.mu.Lock()
	raw, ok := fs.data[key]
	fs.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Set implements Store.
func (fs *FileStore) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.data[key]
	fs.data[key] = raw
	if err := fs.save(); err != nil {
		if had {
			fs.data[key] = prev
		} else {
			delete(fs.data, key)
		}
		return err
	}
	return nil
}

// Delete implements Store.
func (fs *FileStore) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, ok := fs.data[key]
	if !ok {
		return nil
	}
	delete(fs.data, key)
	if err := fs.save(); err != nil {
		fs.data[key] = prev
		return err
	}
	return nil
}

// Close implements Store.
func (fs *FileStore) Close() error { return nil }
