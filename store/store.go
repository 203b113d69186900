// Package store keeps a library of saved programs in a SQLite database.
// It backs SAVE, LOAD, MERGE, KILL and FILES.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("gwbasic.store")

// DefaultExtension is appended to names given without one.
const DefaultExtension = ".BAS"

// ErrNotFound indicates the requested program doesn't exist.
var ErrNotFound = errors.New("program not found")

// ErrBadName indicates a name that cannot be stored.
var ErrBadName = errors.New("bad program name")

// Format tells how a program was saved.
type Format string

const (
	// Tokenised is the binary program file format.
	Tokenised Format = "T"
	// ASCII is LIST output, one line per record.
	ASCII Format = "A"
	// Protected is tokenised and may not be listed.
	Protected Format = "P"
)

// Entry is one saved program.
type Entry struct {
	Name   string
	Format Format
	Data   []byte
}

// Store is a SQLite program library.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the library at path. ":memory:" gives a private
// in-memory library.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: creating directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	// one connection, so that :memory: is a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		name TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		data BLOB NOT NULL,
		saved TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating table: %w", err)
	}
	log.Debugf("opened program library %s", path)
	return &Store{db: db, path: path}, nil
}

// DefaultPath returns the library location used when none is configured.
func DefaultPath() (string, error) {
	if p := os.Getenv("GWBASIC_STORE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: getting home dir: %w", err)
	}
	return filepath.Join(home, ".gwbasic", "programs.db"), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns where the library lives.
func (s *Store) Path() string { return s.path }

// Normalise upper-cases a program name and gives it the default extension
// if it has none.
func Normalise(name string) (string, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\:*?"<>|`) {
		return "", ErrBadName
	}
	if !strings.Contains(name, ".") {
		name += DefaultExtension
	}
	return name, nil
}

// Save stores a program, replacing any with the same name.
func (s *Store) Save(name string, format Format, data []byte) error {
	name, err := Normalise(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO programs (name, format, data) VALUES (?, ?, ?)",
		name, string(format), data,
	)
	if err != nil {
		return fmt.Errorf("store: saving %s: %w", name, err)
	}
	log.Debugf("saved %s (%d bytes)", name, len(data))
	return nil
}

// Load retrieves a program.
func (s *Store) Load(name string) (Entry, error) {
	name, err := Normalise(name)
	if err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry{Name: name}
	var format string
	err = s.db.QueryRow("SELECT format, data FROM programs WHERE name = ?", name).Scan(&format, &e.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("store: loading %s: %w", name, err)
	}
	e.Format = Format(format)
	return e, nil
}

// Delete removes a program.
func (s *Store) Delete(name string) error {
	name, err := Normalise(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM programs WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the names matching pattern, in order. An empty pattern
// matches everything; "*" and "?" are wildcards as in FILES.
func (s *Store) List(pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name FROM programs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: listing: %w", err)
	}
	defer rows.Close()

	pattern = strings.ToUpper(pattern)
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: listing: %w", err)
		}
		if pattern == "" || match(pattern, name) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

// match reports whether name matches a FILES pattern. A pattern without
// an extension matches names with the default one.
func match(pattern, name string) bool {
	if !strings.Contains(pattern, ".") {
		pattern += DefaultExtension
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
