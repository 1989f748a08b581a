package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every key in one JSON object on disk, rewritten atomically on Set.
// Other processes may edit the same document, so every call re-reads it when
// the file changed since the last read.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
	seen os.FileInfo
}

func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}

	f := &File{path: path, data: map[string]json.RawMessage{}}
	if err := f.refresh(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.refresh(); err != nil {
		return nil, false, err
	}
	value, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("store %s: value is not valid json", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.refresh(); err != nil {
		return err
	}
	prev, had := f.data[key]
	f.data[key] = append(json.RawMessage(nil), value...)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// refresh reloads the document unless it is the same file, size and mtime
// as the last read. Callers hold f.mu.
func (f *File) refresh() error {
	info, err := os.Stat(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f.data = map[string]json.RawMessage{}
		f.seen = nil
		return nil
	case err != nil:
		return fmt.Errorf("stat store: %w", err)
	}
	if f.seen != nil && os.SameFile(f.seen, info) && f.seen.Size() == info.Size() && f.seen.ModTime().Equal(info.ModTime()) {
		return nil
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	data := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse store: %w", err)
		}
	}
	// Values were indented on disk; keep them compact in memory.
	for key, value := range data {
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return fmt.Errorf("parse store %s: %w", key, err)
		}
		data[key] = buf.Bytes()
	}
	f.data = data
	f.seen = info
	return nil
}

func (f *File) flush() error {
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".clipguard-store-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o600); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, f.path); err != nil {
		return err
	}
	if info, err := os.Stat(f.path); err == nil {
		f.seen = info
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
