package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/idgen/simple"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/storage/memory"
)

const secret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T) (*auth.Manager, *auth.User) {
	t.Helper()

	l := logger.New(io.Discard, "error")
	m := auth.New(l, memory.New(memory.Config{L: l}), auth.NewTokenIssuer(secret, time.Hour, "discovertours"), simple.New())

	u, err := m.EnsureAdmin(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)

	return m, u
}

func TestLogin(t *testing.T) {
	m, admin := newManager(t)
	ctx := context.Background()

	u, token, err := m.Login(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)
	assert.NotEmpty(t, token)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "assword")

	claims, err := m.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, _, wrongPass := m.Login(ctx, "admin", "nope")
	_, _, unknownUser := m.Login(ctx, "root", "s3cret-pass")

	require.ErrorIs(t, wrongPass, auth.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, auth.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownUser.Error())
	assert.ErrorIs(t, wrongPass, apperr.ErrUnauthorized)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	m, admin := newManager(t)
	ctx := context.Background()

	_, err := m.Authenticate(ctx, "")
	require.True(t, auth.IsInvalidToken(err))

	_, err = m.Authenticate(ctx, "not.a.token")
	require.True(t, auth.IsInvalidToken(err))

	foreign, err := auth.NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour, "discovertours").Issue(admin)
	require.NoError(t, err)

	_, err = m.Authenticate(ctx, foreign)
	require.True(t, auth.IsInvalidToken(err))

	expired, err := auth.NewTokenIssuer(secret, -time.Minute, "discovertours").Issue(admin)
	require.NoError(t, err)

	_, err = m.Authenticate(ctx, expired)
	require.True(t, auth.IsInvalidToken(err))

	//nolint:exhaustruct
	ghost, err := auth.NewTokenIssuer(secret, time.Hour, "discovertours").Issue(&auth.User{ID: "ghost", Role: auth.RoleAdmin})
	require.NoError(t, err)

	_, err = m.Authenticate(ctx, ghost)
	require.True(t, auth.IsInvalidToken(err))
}

func TestUpdateProfile(t *testing.T) {
	m, admin := newManager(t)
	ctx := context.Background()

	//nolint:exhaustruct
	_, err := m.UpdateProfile(ctx, admin.ID, &auth.UpdateProfileInput{
		Username:        "admin",
		CurrentPassword: "wrong-pass",
	})
	inputErr := apperr.IsInputError(err)
	require.NotNil(t, inputErr)
	assert.Contains(t, inputErr.Fields(), "currentPassword")

	//nolint:exhaustruct
	_, err = m.UpdateProfile(ctx, admin.ID, &auth.UpdateProfileInput{
		ID:              "someone-else",
		Username:        "admin",
		CurrentPassword: "s3cret-pass",
	})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	u, err := m.UpdateProfile(ctx, admin.ID, &auth.UpdateProfileInput{
		ID:              admin.ID,
		Username:        "manager",
		CurrentPassword: "s3cret-pass",
		NewPassword:     "even-better-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "manager", u.Username)

	_, _, err = m.Login(ctx, "admin", "s3cret-pass")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = m.Login(ctx, "manager", "even-better-pass")
	require.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	m, admin := newManager(t)
	ctx := context.Background()

	again, err := m.EnsureAdmin(ctx, "admin", "another-pass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = m.EnsureAdmin(ctx, "second", "short")
	require.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, auth.CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, auth.CheckPasswordHash("s3cret-pas", hash))
}
