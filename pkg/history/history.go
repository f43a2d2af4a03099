// Package history keeps the most recently loaded workflow documents so
// they can be reopened from the CLI picker or the editor.
//
// A [Store] holds at most its configured number of entries (10 by
// default); adding one more drops the oldest. Entries are listed newest
// first. Three backends are available: a JSON file under the XDG data
// directory, a SQL table (SQLite, MySQL or PostgreSQL through sqlx) and a
// MongoDB collection. [Open] picks one from configuration.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// MaxEntries is the default number of entries a store keeps.
const MaxEntries = 10

// Source records how a document was loaded.
type Source string

const (
	SourceManual    Source = "manual"
	SourceFile      Source = "file"
	SourceClipboard Source = "clipboard"
	SourceExample   Source = "example"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceFile, SourceClipboard, SourceExample:
		return true
	}
	return false
}

// Entry is one remembered document.
type Entry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Source    Source          `json:"source"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store persists history entries. Implementations are safe for
// concurrent use.
type Store interface {
	// Add stores e, filling in a missing ID and CreatedAt, and drops the
	// oldest entries beyond the store's limit. It returns the stored entry.
	Add(ctx context.Context, e Entry) (Entry, error)

	// List returns up to limit entries, newest first. A non-positive
	// limit returns all of them.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Get returns the entry with the given ID or an ENTRY_NOT_FOUND error.
	Get(ctx context.Context, id string) (Entry, error)

	// Delete removes one entry or returns an ENTRY_NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	Close() error
}

// prepare validates e and fills the generated fields.
func prepare(e Entry) (Entry, error) {
	if err := errors.ValidateHistoryName(e.Name); err != nil {
		return Entry{}, err
	}
	if e.Source == "" {
		e.Source = SourceManual
	}
	if !e.Source.Valid() {
		return Entry{}, errors.New(errors.ErrCodeInvalidInput, "unknown history source %q", e.Source)
	}
	if len(e.Data) == 0 || !json.Valid(e.Data) {
		return Entry{}, errors.New(errors.ErrCodeInvalidJSON, "history data must be a JSON document")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.Name == "" {
		e.Name = "document " + e.CreatedAt.Local().Format("2006-01-02 15:04:05")
	}
	return e, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeEntryNotFound, "history entry %q not found", id)
}

func limitOrMax(limit, n int) int {
	if limit <= 0 || limit > n {
		return n
	}
	return limit
}

// nopStore remembers nothing.
type nopStore struct{}

// Discard returns a store that accepts entries without keeping them.
func Discard() Store { return nopStore{} }

func (nopStore) Add(_ context.Context, e Entry) (Entry, error) { return prepare(e) }

func (nopStore) List(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

func (nopStore) Get(_ context.Context, id string) (Entry, error) { return Entry{}, notFound(id) }

func (nopStore) Delete(_ context.Context, id string) error { return notFound(id) }

func (nopStore) Clear(context.Context) (int, error) { return 0, nil }

func (nopStore) Close() error { return nil }
