package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addUser(t *testing.T, s *Store, in LibraryUserInput) *LibraryUser {
	t.Helper()
	if in.Password == "" {
		in.Password = "pw"
	}
	u, err := s.AddLibraryUser(in)
	require.NoError(t, err)
	return u
}

func TestLibraryUserDefaults(t *testing.T) {
	s := tempStore(t)
	u := addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org", FirstName: "Kim", LastName: "Lee"})
	assert.Equal(t, UserTypeMember, u.UserType)
	assert.Equal(t, UserTypeMember, u.Role)
	assert.Equal(t, StatusActive, u.Status)
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.Nil(t, u.LastLogin)
}

func TestLibraryUserValidation(t *testing.T) {
	s := tempStore(t)
	_, err := s.AddLibraryUser(LibraryUserInput{Username: "a", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidInput, "email required")
	_, err = s.AddLibraryUser(LibraryUserInput{Username: "a", Password: "pw", Email: "a@x", UserType: "wizard"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.GetLibraryUsersByType("wizard")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLibraryUserUniqueness(t *testing.T) {
	s := tempStore(t)
	addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org"})

	_, err := s.AddLibraryUser(LibraryUserInput{Username: "kim", Password: "pw", Email: "other@x.org"})
	assert.ErrorIs(t, err, ErrUniqueViolation)
	_, err = s.AddLibraryUser(LibraryUserInput{Username: "kim2", Password: "pw", Email: "kim@x.org"})
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestUpdateLibraryUser(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	s := tempStore(t, fixedClock(&now))
	u := addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org", Phone: "555"})

	now = now.Add(time.Hour)
	u, err := s.UpdateLibraryUser(u.ID, LibraryUserUpdate{Phone: ptr(""), UserType: ptr(UserTypeStaff)})
	require.NoError(t, err)
	assert.Empty(t, u.Phone)
	assert.Equal(t, UserTypeStaff, u.UserType)
	assert.Equal(t, "kim@x.org", u.Email)
	assert.True(t, now.Equal(u.UpdatedAt))
	assert.True(t, u.UpdatedAt.After(u.CreatedAt))

	_, err = s.UpdateLibraryUser(u.ID, LibraryUserUpdate{UserType: ptr("wizard")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.UpdateLibraryUser(9999, LibraryUserUpdate{Phone: ptr("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateLibraryUserKeepsRequiredFields(t *testing.T) {
	s := tempStore(t)
	u := addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org"})

	_, err := s.UpdateLibraryUser(u.ID, LibraryUserUpdate{Username: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.UpdateLibraryUser(u.ID, LibraryUserUpdate{Email: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := s.GetLibraryUserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim", got.Username)
	assert.Equal(t, "kim@x.org", got.Email)
	ok, err := s.AuthenticateUser("kim", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLibraryUserListsSortedByName(t *testing.T) {
	s := tempStore(t)
	addUser(t, s, LibraryUserInput{Username: "z", Email: "z@x", FirstName: "Zoe", LastName: "Adams", UserType: UserTypeStudent})
	addUser(t, s, LibraryUserInput{Username: "b", Email: "b@x", FirstName: "Ben", LastName: "Young"})
	addUser(t, s, LibraryUserInput{Username: "a", Email: "a@x", FirstName: "Amy", LastName: "Adams"})

	all, err := s.GetAllLibraryUsers()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "z", "b"}, []string{all[0].Username, all[1].Username, all[2].Username})

	students, err := s.GetLibraryUsersByType(UserTypeStudent)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "z", students[0].Username)
}

func TestSearchLibraryUsers(t *testing.T) {
	s := tempStore(t)
	addUser(t, s, LibraryUserInput{Username: "jdoe", Email: "john@x.org", FirstName: "John", LastName: "Doe"})
	addUser(t, s, LibraryUserInput{Username: "asmith", Email: "anna@x.org", FirstName: "Anna", LastName: "Smith", StudentID: "S-77"})
	addUser(t, s, LibraryUserInput{Username: "bdoe", Email: "bea@x.org", FirstName: "Bea", LastName: "Doe", MembershipID: "MEM-1"})

	got, err := s.SearchLibraryUsers("DOE")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bdoe", got[0].Username)
	assert.Equal(t, "jdoe", got[1].Username)

	got, err = s.SearchLibraryUsers("s-77")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "asmith", got[0].Username)

	got, err = s.SearchLibraryUsers("mem-")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.SearchLibraryUsers("_")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.SearchLibraryUsers("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAuthenticateUserRequiresActive(t *testing.T) {
	now := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	s := tempStore(t, fixedClock(&now))
	u := addUser(t, s, LibraryUserInput{Username: "kim", Password: "open-sesame", Email: "kim@x.org"})

	ok, err := s.AuthenticateUser("kim", "open-sesame")
	require.NoError(t, err)
	assert.True(t, ok)
	u, err = s.GetLibraryUserByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)
	assert.True(t, now.Equal(*u.LastLogin))

	ok, err = s.AuthenticateUser("kim", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.UpdateLibraryUser(u.ID, LibraryUserUpdate{Status: ptr(StatusInactive)})
	require.NoError(t, err)
	ok, err = s.AuthenticateUser("kim", "open-sesame")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	now := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	s := tempStore(t, fixedClock(&now))
	u := addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org"})

	sess, err := s.CreateSession(u.ID, "tok-1", "127.0.0.1", "test")
	require.NoError(t, err)
	assert.True(t, sess.IsActive)
	assert.Nil(t, sess.LogoutTime)

	_, err = s.CreateSession(u.ID, "tok-1", "", "")
	assert.ErrorIs(t, err, ErrUniqueViolation)
	_, err = s.CreateSession(4242, "tok-x", "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.ValidateSession("tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)

	now = now.Add(time.Hour)
	res, err := s.LogoutSession("tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Changes)

	got, err = s.ValidateSession("tok-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// A second logout keeps the first logout time.
	now = now.Add(time.Hour)
	res, err = s.LogoutSession("tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Changes)

	sessions, err := s.GetUserSessions(u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].LogoutTime)
	assert.True(t, now.Add(-time.Hour).Equal(*sessions[0].LogoutTime))
	assert.False(t, sessions[0].IsActive)

	got, err = s.ValidateSession("unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetPermissionUpserts(t *testing.T) {
	s := tempStore(t)
	u := addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org"})

	p, err := s.SetPermission(u.ID, "manage_books", true)
	require.NoError(t, err)
	assert.True(t, p.PermissionValue)

	p2, err := s.SetPermission(u.ID, "manage_books", false)
	require.NoError(t, err)
	assert.False(t, p2.PermissionValue)
	assert.Equal(t, p.ID, p2.ID)

	_, err = s.SetPermission(u.ID, "view_reports", true)
	require.NoError(t, err)

	perms, err := s.GetPermissions(u.ID)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, "manage_books", perms[0].PermissionName)

	_, err = s.GetPermission(u.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SetPermission(u.ID, "", true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteLibraryUserCascades(t *testing.T) {
	s := tempStore(t)
	u := addUser(t, s, LibraryUserInput{Username: "kim", Email: "kim@x.org"})
	_, err := s.CreateSession(u.ID, "tok", "", "")
	require.NoError(t, err)
	_, err = s.SetPermission(u.ID, "p", true)
	require.NoError(t, err)

	res, err := s.DeleteLibraryUser(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Changes)

	sessions, err := s.GetUserSessions(u.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	perms, err := s.GetPermissions(u.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}
