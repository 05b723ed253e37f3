package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *LibraryManager {
	dir := t.TempDir()
	mgr, err := NewLibraryManager(filepath.Join(dir, "lib.db"))
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestLoginAsLibraryUser(t *testing.T) {
	mgr := newManager(t)
	u, err := mgr.AddLibraryUser(LibraryUserInput{Username: "kim", Password: "pw", Email: "kim@x.org"})
	require.NoError(t, err)

	token, err := mgr.Login("kim", "pw", "10.0.0.1", "cli")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cur, err := mgr.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, mgr.Logout(token))
	_, err = mgr.CurrentUser(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Logging out again is harmless.
	assert.NoError(t, mgr.Logout(token))
}

func TestLoginLinksAdminAccount(t *testing.T) {
	mgr := newManager(t)

	token, err := mgr.Login("admin", "password", "", "")
	require.NoError(t, err)
	cur, err := mgr.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", cur.Username)
	assert.Equal(t, UserTypeAdmin, cur.UserType)
	assert.Equal(t, "admin@library.com", cur.Email)

	// The linked identity is reused on the next login.
	token2, err := mgr.Login("admin", "password", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
	admins, err := mgr.GetLibraryUsersByType(UserTypeAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.Login("admin", "nope", "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, KindAuthentication, Describe(err).Kind)

	_, err = mgr.Login("ghost", "password", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsAdminNameHeldByMember(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.AddLibraryUser(LibraryUserInput{Username: "admin", Password: "member-pw", Email: "m@x.org"})
	require.NoError(t, err)

	_, err = mgr.Login("admin", "password", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLinkedAdminFollowsAdminCredential(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.Login("admin", "password", "", "")
	require.NoError(t, err)
	admin, err := mgr.GetAdminByUsername("admin")
	require.NoError(t, err)

	_, err = mgr.UpdateAdminUser(admin.ID, AdminUserUpdate{Password: ptr("n3w-secret")})
	require.NoError(t, err)
	_, err = mgr.Login("admin", "password", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = mgr.Login("admin", "n3w-secret", "", "")
	require.NoError(t, err)

	// The linked row cannot be used on its own.
	ok, err := mgr.AuthenticateUser("admin", "n3w-secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkedAdminFollowsRename(t *testing.T) {
	mgr := newManager(t)
	token, err := mgr.Login("admin", "password", "", "")
	require.NoError(t, err)
	linked, err := mgr.CurrentUser(token)
	require.NoError(t, err)
	admin, err := mgr.GetAdminByUsername("admin")
	require.NoError(t, err)

	_, err = mgr.UpdateAdminUser(admin.ID, AdminUserUpdate{Username: ptr("head")})
	require.NoError(t, err)
	token, err = mgr.Login("head", "password", "", "")
	require.NoError(t, err)
	cur, err := mgr.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, linked.ID, cur.ID)
	assert.Equal(t, "head", cur.Username)

	_, err = mgr.UpdateAdminUser(admin.ID, AdminUserUpdate{Username: ptr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeletedAdminCannotLogin(t *testing.T) {
	mgr := newManager(t)
	token, err := mgr.Login("admin", "password", "", "")
	require.NoError(t, err)
	admin, err := mgr.GetAdminByUsername("admin")
	require.NoError(t, err)

	res, err := mgr.DeleteAdminUser(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Changes)

	_, err = mgr.Login("admin", "password", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = mgr.CurrentUser(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	linked, err := mgr.GetLibraryUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, linked.Status)

	res, err = mgr.DeleteAdminUser(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Changes)
}
