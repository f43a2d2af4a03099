package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// FileStore keeps entries in a single JSON file, newest first.
// Writes go to a temporary file that is renamed over the original.
type FileStore struct {
	mu   sync.Mutex
	path string
	max  int
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on the first write.
func NewFileStore(path string, maxEntries int) *FileStore {
	if maxEntries <= 0 {
		maxEntries = MaxEntries
	}
	return &FileStore{path: path, max: maxEntries}
}

// Add prepends e and trims the file to the store's limit.
func (s *FileStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e)
	if err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	entries = slices.DeleteFunc(entries, func(x Entry) bool { return x.ID == e.ID })
	entries = append([]Entry{e}, entries...)
	if len(entries) > s.max {
		entries = entries[:s.max]
	}
	return e, s.save(entries)
}

// List returns up to limit entries, newest first.
func (s *FileStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	n := limitOrMax(limit, len(entries))
	return entries[:n], nil
}

// Get returns one entry.
func (s *FileStore) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, notFound(id)
}

// Delete removes one entry.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(entries), func(e Entry) bool { return e.ID == id })
	if len(kept) == len(entries) {
		return notFound(id)
	}
	return s.save(kept)
}

// Clear removes the history file.
func (s *FileStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return 0, err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "remove history file")
	}
	return len(entries), nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read history file")
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "history file %s is corrupt", s.path)
	}
	return entries, nil
}

func (s *FileStore) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create history dir")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write history file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "replace history file")
	}
	return nil
}

var _ Store = (*FileStore)(nil)
