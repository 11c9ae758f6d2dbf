package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminMachine(t *testing.T) (*AdminMachine, *Machine) {
	t.Helper()
	store := newTestStore(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAdminMachine(store, discardLogger(), "root", hash),
		NewMachine(&fakeAPI{}, store, discardLogger())
}

func TestAdminMachine_LoginLogout(t *testing.T) {
	admin, _ := newAdminMachine(t)
	ctx := context.Background()

	assert.Equal(t, AdminAnonymous, admin.State())

	require.NoError(t, admin.Login(ctx, "root", "hunter22"))
	assert.Equal(t, AdminAuthenticated, admin.State())
	require.NotNil(t, admin.Session())
	assert.Equal(t, "root", admin.Session().Username)

	require.NoError(t, admin.Logout(ctx))
	assert.Equal(t, AdminAnonymous, admin.State())
	assert.Nil(t, admin.Session())
}

func TestAdminMachine_BadCredentials(t *testing.T) {
	admin, _ := newAdminMachine(t)
	ctx := context.Background()

	assert.ErrorIs(t, admin.Login(ctx, "root", "wrong"), ErrBadAdminCredentials)
	assert.ErrorIs(t, admin.Login(ctx, "nobody", "hunter22"), ErrBadAdminCredentials)
	assert.Equal(t, AdminAnonymous, admin.State())
}

func TestAdminMachine_IndependentOfUserMachine(t *testing.T) {
	admin, user := newAdminMachine(t)
	ctx := context.Background()

	require.NoError(t, admin.Login(ctx, "root", "hunter22"))
	assert.Equal(t, StateAnonymous, user.State(), "admin login must not touch the user machine")

	require.NoError(t, admin.Restore(ctx))
	assert.Equal(t, AdminAuthenticated, admin.State())
}

func TestAdminMachine_RestorePersistedSession(t *testing.T) {
	store := newTestStore(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	first := NewAdminMachine(store, discardLogger(), "root", hash)
	require.NoError(t, first.Login(ctx, "root", "hunter22"))

	second := NewAdminMachine(store, discardLogger(), "root", hash)
	require.NoError(t, second.Restore(ctx))
	assert.Equal(t, AdminAuthenticated, second.State())
}
