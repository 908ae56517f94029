package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"resume-portal/internal/shared/auth"
	"resume-portal/internal/shared/util"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo(), &auth.PasswordConfig{BcryptCost: bcrypt.MinCost})
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "pw-123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, Registration{Username: "alice", Password: "pw-123456"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, Registration{Username: "alice2", Email: "ALICE@example.com", Password: "pw-123456"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, Registration{Username: "bad name", Password: "pw-123456"})
	assert.ErrorIs(t, err, util.ErrInvalidUsername)
}

func TestExists(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, Registration{Username: "bob", Password: "pw-123456"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Exists(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindOrCreateFromGoogle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, Registration{Username: "jane", Password: "pw-123456"})
	require.NoError(t, err)

	created, err := svc.FindOrCreateFromGoogle(ctx, GoogleProfile{Subject: "sub-1", Email: "jane@example.com", FullName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "jane_"+util.ShortHash("sub-1", 6), created.Username)
	assert.Empty(t, created.PasswordHash)

	again, err := svc.FindOrCreateFromGoogle(ctx, GoogleProfile{Subject: "sub-1", Email: "Jane@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = svc.FindOrCreateFromGoogle(ctx, GoogleProfile{Subject: "sub-2"})
	assert.Error(t, err)
}

func TestFindOrCreateFromGoogleDoesNotLinkPasswordAccounts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	squatter, err := svc.Register(ctx, Registration{Username: "squatter", Email: "jane@example.com", Password: "pw-123456"})
	require.NoError(t, err)

	_, err = svc.FindOrCreateFromGoogle(ctx, GoogleProfile{Subject: "sub-1", Email: "jane@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	stored, err := svc.GetByUsername(ctx, "squatter")
	require.NoError(t, err)
	assert.Equal(t, squatter.PasswordHash, stored.PasswordHash)
	exists, err := svc.Exists(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNilServiceIsNotConfigured(t *testing.T) {
	var svc *Service
	_, err := svc.GetByUsername(context.Background(), "alice")
	assert.True(t, errors.Is(err, errNotConfigured))
}
