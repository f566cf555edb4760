package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/lockout"
	"github.com/Krish-Depani/secure-auth/models"
)

func newMemoryStoreWithUser(t *testing.T) (*MemoryAccountStore, *models.User) {
	t.Helper()
	s := NewMemoryAccountStore(lockout.DefaultPolicy())
	u, err := s.Create(context.Background(), &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return s, u
}

func TestMemoryAccountStore_CreateAndFind(t *testing.T) {
	s, u := newMemoryStoreWithUser(t)
	ctx := context.Background()

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := s.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.FindByUsernameOrEmail(ctx, "alice", "other@example.com")
	require.NoError(t, err)
	_, err = s.FindByUsernameOrEmail(ctx, "bob", "alice@example.com")
	require.NoError(t, err)

	_, err = s.FindByUsernameOrEmail(ctx, "bob", "bob@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryAccountStore_CreateConflicts(t *testing.T) {
	s, _ := newMemoryStoreWithUser(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &models.User{Username: "alice", Email: "new@example.com"})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = s.Create(ctx, &models.User{Username: "newbie", Email: "alice@example.com"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestMemoryAccountStore_ReturnsCopies(t *testing.T) {
	s, u := newMemoryStoreWithUser(t)

	u.FailedLoginAttempts = 42
	fresh, err := s.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.FailedLoginAttempts)
}

func TestMemoryAccountStore_ConcurrentCreateSameEmail(t *testing.T) {
	s := NewMemoryAccountStore(lockout.DefaultPolicy())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Create(ctx, &models.User{
				Username:     []string{"first", "second"}[i],
				Email:        "same@example.com",
				PasswordHash: "hash",
			})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
}

func TestMemoryAccountStore_ApplyLoginOutcome(t *testing.T) {
	s, u := newMemoryStoreWithUser(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		got, err := s.ApplyLoginOutcome(ctx, u.ID, lockout.OutcomeFailure, now)
		require.NoError(t, err)
		assert.Equal(t, i, got.FailedLoginAttempts)
	}

	locked, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, locked.LockedUntil)
	assert.True(t, locked.LockedUntil.Equal(now.Add(15*time.Minute)))

	got, err := s.ApplyLoginOutcome(ctx, u.ID, lockout.OutcomeSuccess, now.Add(20*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedLoginAttempts)
	assert.Nil(t, got.LockedUntil)
	require.NotNil(t, got.LastLogin)

	_, err = s.ApplyLoginOutcome(ctx, uuid.New(), lockout.OutcomeFailure, now)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryAccountStore_ConcurrentFailuresAreAllCounted(t *testing.T) {
	s, u := newMemoryStoreWithUser(t)
	ctx := context.Background()
	now := time.Now()

	const n = 3
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ApplyLoginOutcome(ctx, u.ID, lockout.OutcomeFailure, now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.FailedLoginAttempts)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := &models.UserSession{User: models.SessionUser{ID: uuid.New(), Username: "alice"}}
	require.NoError(t, store.SetSession(ctx, "tok", sess, time.Hour))

	got, err := store.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Username)

	now = now.Add(2 * time.Hour)
	_, err = store.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SetSession(ctx, "tok2", sess, time.Hour))
	require.NoError(t, store.DeleteSession(ctx, "tok2"))
	_, err = store.GetSession(ctx, "tok2")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
