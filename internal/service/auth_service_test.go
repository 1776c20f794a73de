package service

import (
	"alcyxob/gym-tracker/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAuth(store *memory.Store) *authService {
	return NewAuthService(store.Users(), store.Sessions(), testSecret, time.Hour).(*authService)
}

func registerAlice(t *testing.T, svc AuthService) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
}

func TestRegister_HashesPassword(t *testing.T) {
	store := memory.NewStore()
	svc := newTestAuth(store)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, "alice@example.com", user.Email)

	stored, err := store.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "long-enough"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRegister_Duplicate(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	registerAlice(t, svc)
	ctx := context.Background()

	t.Run("by username", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Empty(t, res.User.PasswordHash)
		assert.True(t, res.ExpiresAt.After(time.Now()))
	})

	t.Run("by email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "s3cret-pass"})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Username: "nobody", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Username: "alice"})
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	registerAlice(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	userID, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	other := NewAuthService(memory.NewStore().Users(), memory.NewStore().Sessions(), "other-secret", time.Hour)
	_, err = other.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthenticate_Expired(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	registerAlice(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// An expired token can still be logged out.
	assert.NoError(t, svc.Logout(ctx, res.Token))
}

func TestLogout(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	registerAlice(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token))
	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Logging out again, or with garbage, is a no-op.
	assert.NoError(t, svc.Logout(ctx, res.Token))
	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestLogout_OnlyRevokesOwnSession(t *testing.T) {
	svc := newTestAuth(memory.NewStore())
	registerAlice(t, svc)
	ctx := context.Background()

	first, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.Token))
	_, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}
