package auth

import (
	"path/filepath"
	"testing"

	"flatdb/dberror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return s
}

func TestSeededAdmin(t *testing.T) {
	s := openStore(t)

	assert.Equal(t, []string{DefaultAdmin}, s.Users())
	assert.True(t, s.IsAdmin(DefaultAdmin))
	assert.False(t, s.IsAdmin("nobody"))
	assert.True(t, s.ValidatePassword(DefaultAdmin, DefaultPassword))
	assert.False(t, s.ValidatePassword(DefaultAdmin, "wrong"))
	for _, p := range Permissions {
		assert.True(t, s.Check(DefaultAdmin, "AnyDB", "AnyTable", p))
	}
}

func TestUsersAndPasswords(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.AddUser("bob", "secret", false))
	assert.ErrorIs(t, s.AddUser("bob", "again", false), dberror.ErrAlreadyExists)
	assert.True(t, s.ValidatePassword("bob", "secret"))

	require.NoError(t, s.SetPassword("bob", "changed"))
	assert.False(t, s.ValidatePassword("bob", "secret"))
	assert.True(t, s.ValidatePassword("bob", "changed"))

	assert.ErrorIs(t, s.SetPassword("nobody", "x"), dberror.ErrPermission)
	assert.False(t, s.ValidatePassword("nobody", "x"))
}

func TestGrantCheckRevoke(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.AddUser("bob", "secret", false))

	assert.False(t, s.Check("bob", "Shop", "Orders", Select))

	require.NoError(t, s.Grant("bob", "Shop", "Orders", Select))
	require.NoError(t, s.Grant("bob", "Shop", Any, Insert))
	require.NoError(t, s.Grant("bob", Any, "Audit", Delete))

	assert.True(t, s.Check("bob", "Shop", "Orders", Select))
	assert.False(t, s.Check("bob", "Shop", "Items", Select))
	assert.True(t, s.Check("bob", "Shop", "Items", Insert))
	assert.True(t, s.Check("bob", "Other", "Audit", Delete))
	assert.False(t, s.Check("bob", "Other", "Orders", Insert))

	assert.ErrorIs(t, s.Authorize("bob", "Shop", "Items", Alter), dberror.ErrPermission)
	assert.ErrorIs(t, s.Grant("bob", "Shop", "Orders", Permission("drop")), dberror.ErrPermission)

	held, err := s.Revoke("bob", "Shop", Any, Insert)
	require.NoError(t, err)
	assert.True(t, held)
	assert.False(t, s.Check("bob", "Shop", "Items", Insert))

	held, err = s.Revoke("bob", "Shop", "Items", Insert)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AddUser("bob", "secret", false))
	require.NoError(t, s.Grant("bob", "Shop", "Orders", Update))
	require.NoError(t, s.Save())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "bob"}, reopened.Users())
	assert.True(t, reopened.ValidatePassword("bob", "secret"))
	assert.True(t, reopened.Check("bob", "Shop", "Orders", Update))
	assert.False(t, reopened.Check("bob", "Shop", "Orders", Insert))
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("alter")
	require.NoError(t, err)
	assert.Equal(t, Alter, p)

	_, err = ParsePermission("ALTER")
	assert.ErrorIs(t, err, dberror.ErrPermission)
}
