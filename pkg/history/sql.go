package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const historySchema = `CREATE TABLE IF NOT EXISTS history_entries (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(256) NOT NULL,
	source VARCHAR(16) NOT NULL,
	data TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// entryRow is the table representation of an [Entry].
type entryRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Source    string    `db:"source"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

func (r entryRow) entry() Entry {
	return Entry{
		ID:        r.ID,
		Name:      r.Name,
		Source:    Source(r.Source),
		Data:      json.RawMessage(r.Data),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// SQLStore keeps entries in the history_entries table. Queries are
// written with ? placeholders and rebound for the driver in use.
type SQLStore struct {
	db  *sqlx.DB
	max int
}

// OpenSQL connects with driver and dsn and creates the table if needed.
// MySQL DSNs get parseTime=true so timestamps scan into time.Time.
func OpenSQL(ctx context.Context, driver, dsn string, maxEntries int) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	case DriverMySQL:
		dsn = withParseTime(dsn)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported history driver %q (want sqlite3, mysql or postgres)", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s database", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to %s database", driver)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	store, err := NewSQLStore(ctx, db, maxEntries)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database and creates the table if needed.
func NewSQLStore(ctx context.Context, db *sqlx.DB, maxEntries int) (*SQLStore, error) {
	if maxEntries <= 0 {
		maxEntries = MaxEntries
	}
	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create history table")
	}
	return &SQLStore{db: db, max: maxEntries}, nil
}

// Add inserts e and deletes rows beyond the limit in one transaction.
func (s *SQLStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e)
	if err != nil {
		return Entry{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM history_entries WHERE id = ?`), e.ID); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "replace history entry")
	}
	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO history_entries (id, name, source, data, created_at)
		 VALUES (:id, :name, :source, :data, :created_at)`,
		entryRow{ID: e.ID, Name: e.Name, Source: string(e.Source), Data: string(e.Data), CreatedAt: e.CreatedAt})
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "insert history entry")
	}

	var ids []string
	if err := tx.SelectContext(ctx, &ids, `SELECT id FROM history_entries ORDER BY created_at DESC, id DESC`); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "list history entries")
	}
	if len(ids) > s.max {
		query, args, err := sqlx.In(`DELETE FROM history_entries WHERE id IN (?)`, ids[s.max:])
		if err != nil {
			return Entry{}, fmt.Errorf("build trim query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "trim history")
		}
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "commit history entry")
	}
	return e, nil
}

// List returns up to limit entries, newest first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]Entry, error) {
	var rows []entryRow
	query := s.db.Rebind(`SELECT id, name, source, data, created_at FROM history_entries
		ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, limitOrMax(limit, s.max)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list history entries")
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out, nil
}

// Get returns one entry.
func (s *SQLStore) Get(ctx context.Context, id string) (Entry, error) {
	var row entryRow
	query := s.db.Rebind(`SELECT id, name, source, data, created_at FROM history_entries WHERE id = ?`)
	err := s.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return Entry{}, notFound(id)
	}
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "get history entry")
	}
	return row.entry(), nil
}

// Delete removes one entry.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM history_entries WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete history entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Clear deletes every row.
func (s *SQLStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history_entries`)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "clear history")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

var _ Store = (*SQLStore)(nil)
