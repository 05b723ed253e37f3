package library

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock returns a clock that reads *now, so tests can move time.
func fixedClock(now *time.Time) Option {
	return WithClock(func() time.Time { return *now })
}

func TestOpenSeedsDefaultAdmin(t *testing.T) {
	s := tempStore(t)

	admin, err := s.GetAdminByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "System Administrator", admin.FullName)
	assert.Equal(t, "admin@library.com", admin.Email)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.NotEqual(t, "password", admin.PasswordHash)
	assert.Nil(t, admin.LastLogin)

	ok, err := s.AuthenticateAdmin("admin", "password")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReopenSkipsAdminHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	orig := hashPassword
	t.Cleanup(func() { hashPassword = orig })
	calls := 0
	hashPassword = func(p string) (string, error) {
		calls++
		return orig(p)
	}

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Zero(t, calls)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open #%d", i)
		admins, err := s.GetAllAdmins()
		require.NoError(t, err)
		assert.Len(t, admins, 1)
		v, err := schemaVersion(s.db)
		require.NoError(t, err)
		assert.Equal(t, CurrentSchemaVersion(), v)
		require.NoError(t, s.Close())
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "lib.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	garbage := bytes.Repeat([]byte("this is not a sqlite database\n"), 200)
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	s, err := Open(path)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrCorruptStore)
	assert.Equal(t, KindCorruptStore, Describe(err).Kind)

	// The damaged file is left alone.
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, after)
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE meta SET value = '99' WHERE key = ?`, schemaVersionMetaKey)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNextIDMonotonicAcrossDeletesAndRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	s, err := Open(path)
	require.NoError(t, err)

	m1, err := s.AddMember(MemberInput{MemberID: "M1", Name: "Alice"})
	require.NoError(t, err)
	m2, err := s.AddMember(MemberInput{MemberID: "M2", Name: "Bob"})
	require.NoError(t, err)
	assert.Greater(t, m2.ID, m1.ID)

	res, err := s.DeleteMember(m2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Changes)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	b, err := s.AddBook(BookInput{ISBN: "1", Title: "After restart"})
	require.NoError(t, err)
	assert.Greater(t, b.ID, m2.ID, "ids are never reused")

	next, err := s.NextID()
	require.NoError(t, err)
	assert.Equal(t, b.ID+1, next)
}

func TestReloadAfterRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	s, err := Open(path)
	require.NoError(t, err)

	want := map[string]string{}
	for _, in := range []BookInput{
		{ISBN: "100", Title: "One"},
		{ISBN: "101", Title: "Two"},
		{ISBN: "102", Title: "Three"},
		{ISBN: "103", Title: "Four"},
		{ISBN: "104", Title: "Five"},
	} {
		_, err := s.AddBook(in)
		require.NoError(t, err)
		want[in.ISBN] = in.Title
	}
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	books, err := s.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, books, 5)
	for _, b := range books {
		assert.Equal(t, want[b.ISBN], b.Title)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.AddMember(MemberInput{MemberID: "M1", Name: "Alice"})
	assert.ErrorIs(t, err, ErrPersistence)
	_, err = s.GetAllMembers()
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestFailedMutationRollsBack(t *testing.T) {
	s := tempStore(t)
	_, err := s.AddBook(BookInput{ISBN: "dup", Title: "First"})
	require.NoError(t, err)
	before, err := s.NextID()
	require.NoError(t, err)

	_, err = s.AddBook(BookInput{ISBN: "dup", Title: "Second"})
	require.ErrorIs(t, err, ErrUniqueViolation)

	after, err := s.NextID()
	require.NoError(t, err)
	assert.Equal(t, before+1, after, "the failed insert must not consume an id")
}

func TestBackup(t *testing.T) {
	s := tempStore(t)
	_, err := s.AddBook(BookInput{ISBN: "9780", Title: "Backed Up"})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "backups", "lib.bak")
	require.NoError(t, s.Backup(dest))

	copyStore, err := Open(dest)
	require.NoError(t, err)
	defer copyStore.Close()
	b, err := copyStore.GetBookByISBN("9780")
	require.NoError(t, err)
	assert.Equal(t, "Backed Up", b.Title)

	// A second backup replaces the first.
	require.NoError(t, s.Backup(dest))
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(dest), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestBackupRequiresDestination(t *testing.T) {
	s := tempStore(t)
	assert.ErrorIs(t, s.Backup(""), ErrInvalidInput)
}

func TestSampleDataSeededOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	s, err := Open(path, WithSampleData(true))
	require.NoError(t, err)
	books, err := s.GetAllBooks()
	require.NoError(t, err)
	assert.Len(t, books, len(sampleBooks))
	users, err := s.GetAllLibraryUsers()
	require.NoError(t, err)
	assert.Len(t, users, len(sampleUsers))
	require.NoError(t, s.Close())

	s, err = Open(path, WithSampleData(true))
	require.NoError(t, err)
	defer s.Close()
	books, err = s.GetAllBooks()
	require.NoError(t, err)
	assert.Len(t, books, len(sampleBooks))
}

func TestApplyMigrationsSkipsApplied(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	migs := []migration{
		{version: 1, description: "t", statements: []string{`CREATE TABLE t (id INTEGER PRIMARY KEY);`}},
	}
	require.NoError(t, applyMigrations(db, migs))
	// Re-running must not fail on the already created table.
	migs[0].statements = []string{`CREATE TABLE t (id INTEGER PRIMARY KEY);`}
	require.NoError(t, applyMigrations(db, migs))

	v, err := schemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
