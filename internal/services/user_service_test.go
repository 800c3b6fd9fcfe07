package services

import (
	"context"
	"testing"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newFakeStore())
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "rosa", "Rosa@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "rosa@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.False(t, user.PhoneVerified)
	assert.NotEqual(t, "s3cret-pass", user.HashedPassword)

	got, err := svc.AuthenticateUser(ctx, "rosa@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.AuthenticateUser(ctx, "rosa@example.com", "wrong")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.AuthenticateUser(ctx, "nobody@example.com", "s3cret-pass")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeStore())
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "rosa", "rosa@example.com", "pass1")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "other", "ROSA@example.com", "pass2")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newFakeStore())
	ctx := context.Background()

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@b.com", "pass"},
		{"rosa", "", "pass"},
		{"rosa", "a@b.com", ""},
	} {
		_, err := svc.RegisterUser(ctx, tc.username, tc.email, tc.password)
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestAuthenticateClosedAccount(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "rosa", "rosa@example.com", "pass")
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, user.ID.Hex(), models.UserStatusDeleted))

	_, err = svc.AuthenticateUser(ctx, "rosa@example.com", "pass")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestPublishGate(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "rosa", "rosa@example.com", "pass")
	require.NoError(t, err)

	// Fresh accounts may not publish: no phone verification yet.
	ok, err := svc.CheckEligibility(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetVerification(ctx, user.ID.Hex(), VerificationUpdate{PhoneVerified: boolPtr(true)}))
	ok, err = svc.CheckEligibility(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.True(t, ok)

	// A held account loses the gate even while verified.
	require.NoError(t, svc.SetStatus(ctx, user.ID.Hex(), models.UserStatusOnHold))
	ok, err = svc.CheckEligibility(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.False(t, ok)

	// Donating is never gated.
	assert.True(t, svc.CanDonate())
}

func TestSetVerificationFlagsIndependent(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "rosa", "rosa@example.com", "pass")
	require.NoError(t, err)

	require.NoError(t, svc.SetVerification(ctx, user.ID.Hex(), VerificationUpdate{
		IDVerified:      boolPtr(true),
		AddressVerified: boolPtr(true),
	}))

	got, err := svc.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.False(t, got.PhoneVerified)
	assert.True(t, got.IDVerified)
	assert.True(t, got.AddressVerified)

	// Re-applying the same flag is a no-op success.
	require.NoError(t, svc.SetVerification(ctx, user.ID.Hex(), VerificationUpdate{IDVerified: boolPtr(true)}))
	got, _ = svc.GetUser(ctx, user.ID.Hex())
	assert.True(t, got.IDVerified)

	// An empty update is a caller mistake.
	err = svc.SetVerification(ctx, user.ID.Hex(), VerificationUpdate{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "rosa", "rosa@example.com", "pass")
	require.NoError(t, err)

	err = svc.SetStatus(ctx, user.ID.Hex(), "banned")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "rosa", "rosa@example.com", "pass")
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, user.ID.Hex(), "  rosa-m  ")
	require.NoError(t, err)
	assert.Equal(t, "rosa-m", got.Username)

	_, err = svc.UpdateProfile(ctx, user.ID.Hex(), "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
