package library

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
)

const (
	schemaVersionMetaKey = "schema_version"
	lastIDMetaKey        = "last_id"
)

type migration struct {
	version     int
	description string
	statements  []string
}

// Foreign keys use ON DELETE SET NULL for loans, feedback and announcements
// so history survives the deletion of a book, member or author.
var defaultMigrations = []migration{
	{
		version:     1,
		description: "create entity tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS admin_users (
				id INTEGER PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				full_name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'admin',
				created_at TEXT NOT NULL,
				last_login TEXT
			);`,
			`CREATE TABLE IF NOT EXISTS staff (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				role TEXT NOT NULL DEFAULT 'Librarian',
				phone TEXT NOT NULL DEFAULT '',
				department TEXT NOT NULL DEFAULT '',
				hire_date TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'Active',
				created_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS members (
				id INTEGER PRIMARY KEY,
				member_id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				membership_date TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'Active',
				created_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS books (
				id INTEGER PRIMARY KEY,
				isbn TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				publisher TEXT NOT NULL DEFAULT '',
				year INTEGER NOT NULL DEFAULT 0,
				category TEXT NOT NULL DEFAULT '',
				copies_available INTEGER NOT NULL DEFAULT 1,
				total_copies INTEGER NOT NULL DEFAULT 1,
				location TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				CHECK (copies_available >= 0 AND copies_available <= total_copies)
			);`,
			`CREATE TABLE IF NOT EXISTS borrowed_books (
				id INTEGER PRIMARY KEY,
				book_id INTEGER REFERENCES books(id) ON DELETE SET NULL,
				member_id INTEGER REFERENCES members(id) ON DELETE SET NULL,
				borrowed_date TEXT NOT NULL,
				due_date TEXT NOT NULL,
				returned_date TEXT,
				status TEXT NOT NULL DEFAULT 'Borrowed',
				created_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS announcements (
				id INTEGER PRIMARY KEY,
				title TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				author_id INTEGER REFERENCES admin_users(id) ON DELETE SET NULL,
				priority TEXT NOT NULL DEFAULT 'Normal',
				is_active BOOLEAN NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id INTEGER PRIMARY KEY,
				member_id INTEGER REFERENCES members(id) ON DELETE SET NULL,
				subject TEXT NOT NULL DEFAULT '',
				message TEXT NOT NULL,
				rating INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'Pending',
				created_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS attendance (
				id INTEGER PRIMARY KEY,
				date TEXT NOT NULL,
				name TEXT NOT NULL,
				library_number TEXT NOT NULL DEFAULT '',
				purpose TEXT NOT NULL DEFAULT '',
				time TEXT NOT NULL,
				created_at TEXT NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_borrowed_books_book ON borrowed_books(book_id);`,
			`CREATE INDEX IF NOT EXISTS idx_borrowed_books_status ON borrowed_books(status);`,
		},
	},
	{
		version:     2,
		description: "unified user identity, sessions and permissions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS library_users (
				id INTEGER PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				first_name TEXT NOT NULL DEFAULT '',
				middle_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				user_type TEXT NOT NULL CHECK (user_type IN ('admin','staff','member','student')),
				role TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'Active',
				is_verified BOOLEAN NOT NULL DEFAULT 0,
				phone TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				membership_id TEXT NOT NULL DEFAULT '',
				student_id TEXT NOT NULL DEFAULT '',
				department TEXT NOT NULL DEFAULT '',
				last_login TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS user_sessions (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL REFERENCES library_users(id) ON DELETE CASCADE,
				session_token TEXT NOT NULL UNIQUE,
				ip_address TEXT NOT NULL DEFAULT '',
				user_agent TEXT NOT NULL DEFAULT '',
				login_time TEXT NOT NULL,
				logout_time TEXT,
				is_active BOOLEAN NOT NULL DEFAULT 1
			);`,
			`CREATE TABLE IF NOT EXISTS user_permissions (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL REFERENCES library_users(id) ON DELETE CASCADE,
				permission_name TEXT NOT NULL,
				permission_value BOOLEAN NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				UNIQUE(user_id, permission_name)
			);`,
			`CREATE INDEX IF NOT EXISTS idx_library_users_name ON library_users(last_name, first_name);`,
		},
	},
}

// applyMigrations brings the schema up to the newest version. Each version
// runs in its own transaction and is recorded in meta.schema_version, so
// running it on every startup is safe.
func applyMigrations(db *sql.DB, migrations []migration) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`INSERT OR IGNORE INTO meta(key, value) VALUES('` + schemaVersionMetaKey + `', '0');`,
		`INSERT OR IGNORE INTO meta(key, value) VALUES('` + lastIDMetaKey + `', '0');`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return classify("ensure meta", err)
		}
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	ordered := make([]migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].version < ordered[j].version })

	latest := 0
	if len(ordered) > 0 {
		latest = ordered[len(ordered)-1].version
	}
	if current > latest {
		return &OpError{Op: "apply migrations", Kind: ErrSchemaTooNew, Err: fmt.Errorf("db=%d code=%d", current, latest)}
	}

	for _, m := range ordered {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	op := fmt.Sprintf("migration v%d (%s)", m.version, m.description)
	tx, err := db.Begin()
	if err != nil {
		return classify(op, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return classify(op, err)
		}
	}
	if _, err := tx.Exec(`UPDATE meta SET value = ? WHERE key = ?`, strconv.Itoa(m.version), schemaVersionMetaKey); err != nil {
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	var raw string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, schemaVersionMetaKey).Scan(&raw); err != nil {
		return 0, classify("read schema version", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &OpError{Op: "read schema version", Kind: ErrCorruptStore, Err: fmt.Errorf("parse %q: %w", raw, err)}
	}
	return v, nil
}

// CurrentSchemaVersion is the schema version this build writes.
func CurrentSchemaVersion() int {
	latest := 0
	for _, m := range defaultMigrations {
		if m.version > latest {
			latest = m.version
		}
	}
	return latest
}
