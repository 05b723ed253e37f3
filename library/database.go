package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store owns the SQLite file backing one library dataset. Every mutating
// operation runs in its own transaction and is durable once it returns.
//
// A Store is meant to be used by a single process. Two processes opening
// the same file concurrently is unsupported.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	now    func() time.Time
	sample bool
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for created_at, last_login and
// the dashboard window.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSampleData seeds illustrative staff, books and users into empty tables.
func WithSampleData(enabled bool) Option {
	return func(s *Store) { s.sample = enabled }
}

// Open opens (or creates) the store at path, verifies the file, applies
// schema migrations and seeds the default admin account.
//
// A file that is not a readable SQLite database aborts with ErrCorruptStore;
// the store never silently starts over with an empty dataset.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, &OpError{Op: "open store", Kind: ErrInvalidInput, Err: errors.New("empty path")}
	}
	s := &Store{
		path:   path,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &OpError{Op: "open store", Kind: ErrPersistence, Err: fmt.Errorf("create db dir: %w", err)}
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, classify("open store", err)
	}
	// One connection keeps every operation strictly sequential.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.verify(); err != nil {
		db.Close()
		if errors.Is(err, ErrCorruptStore) {
			s.logger.Error("refusing to open corrupt store", zap.String("path", path), zap.Error(err))
		}
		return nil, err
	}
	if err := applyMigrations(db, defaultMigrations); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seedDefaults(); err != nil {
		db.Close()
		return nil, err
	}
	if s.sample {
		s.seedSampleData()
	}
	s.logger.Debug("store opened", zap.String("path", path))
	return s, nil
}

// verify enables WAL and runs an integrity check. Both fail on a file that
// is not a SQLite database.
func (s *Store) verify() error {
	// WAL keeps readers off half-written pages.
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return corrupt("open store", err)
	}
	var result string
	if err := s.db.QueryRow("PRAGMA quick_check;").Scan(&result); err != nil {
		return corrupt("open store", err)
	}
	if result != "ok" {
		return &OpError{Op: "open store", Kind: ErrCorruptStore, Err: fmt.Errorf("quick_check: %s", result)}
	}
	return nil
}

func corrupt(op string, err error) error {
	cerr := classify(op, err)
	if errors.Is(cerr, ErrPersistence) {
		// Anything that stops SQLite from reading the header is treated
		// as an unreadable store.
		return &OpError{Op: op, Kind: ErrCorruptStore, Err: err}
	}
	return cerr
}

// Close releases the database handle. Calling it more than once is safe.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return classify("close store", err)
	}
	return nil
}

func (s *Store) Path() string { return s.path }

// NextID allocates the next surrogate id in its own transaction.
func (s *Store) NextID() (int64, error) {
	var id int64
	err := s.withTx("next id", func(tx *sql.Tx) error {
		var err error
		id, err = nextID(tx)
		return err
	})
	return id, err
}

// nextID bumps the store-wide counter. Ids are shared by every table, are
// strictly increasing and are never handed out twice.
func nextID(tx *sql.Tx) (int64, error) {
	if _, err := tx.Exec(`UPDATE meta SET value = CAST(value AS INTEGER) + 1 WHERE key = ?`, lastIDMetaKey); err != nil {
		return 0, err
	}
	var raw string
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = ?`, lastIDMetaKey).Scan(&raw); err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// withTx runs fn in a transaction and commits it. Any failure rolls the
// transaction back and is reported as a typed OpError.
func (s *Store) withTx(op string, fn func(tx *sql.Tx) error) error {
	if s.db == nil {
		return &OpError{Op: op, Kind: ErrPersistence, Err: errors.New("store is closed")}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return s.fail(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return s.fail(op, err)
	}
	if err := tx.Commit(); err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *Store) fail(op string, err error) error {
	err = classify(op, err)
	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrCorruptStore) {
		s.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// list runs a read query and collects rows with scan.
func list[T any](s *Store, op string, scan func(rowScanner) (*T, error), query string, args ...any) ([]*T, error) {
	if s.db == nil {
		return nil, &OpError{Op: op, Kind: ErrPersistence, Err: errors.New("store is closed")}
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, s.fail(op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return out, nil
}

// get runs a single-row read. A missing row yields ErrNotFound.
func get[T any](s *Store, op string, scan func(rowScanner) (*T, error), query string, args ...any) (*T, error) {
	if s.db == nil {
		return nil, &OpError{Op: op, Kind: ErrPersistence, Err: errors.New("store is closed")}
	}
	item, err := scan(s.db.QueryRow(query, args...))
	if err != nil {
		return nil, s.fail(op, err)
	}
	return item, nil
}

// deleteByID removes one row. A missing id is a zero Result, not an error.
func (s *Store) deleteByID(op, table string, id int64) (Result, error) {
	var res Result
	err := s.withTx(op, func(tx *sql.Tx) error {
		r, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
		if err != nil {
			return err
		}
		res.Changes, err = r.RowsAffected()
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Backup writes a consistent copy of the store to dest. The copy is built
// in a temporary file beside dest and renamed into place, so dest is never
// observed half-written.
func (s *Store) Backup(dest string) error {
	const op = "backup"
	if s.db == nil {
		return &OpError{Op: op, Kind: ErrPersistence, Err: errors.New("store is closed")}
	}
	if dest == "" {
		return &OpError{Op: op, Kind: ErrInvalidInput, Err: errors.New("empty destination")}
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s.fail(op, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return s.fail(op, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(tmpPath); err != nil {
		return s.fail(op, err)
	}
	if _, err := s.db.Exec(`VACUUM INTO ?`, tmpPath); err != nil {
		os.Remove(tmpPath)
		return s.fail(op, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return s.fail(op, err)
	}
	s.logger.Info("store backed up", zap.String("dest", dest))
	return nil
}
