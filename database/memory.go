package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/lockout"
	"github.com/Krish-Depani/secure-auth/models"
)

// MemoryAccountStore keeps users in process memory for development and
// tests. One mutex covers both the uniqueness check with its insert and every
// lockout read-modify-write.
type MemoryAccountStore struct {
	mu         sync.Mutex
	policy     lockout.Policy
	byID       map[uuid.UUID]*models.User
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
}

func NewMemoryAccountStore(policy lockout.Policy) *MemoryAccountStore {
	return &MemoryAccountStore{
		policy:     policy,
		byID:       make(map[uuid.UUID]*models.User),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (s *MemoryAccountStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryAccountStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryAccountStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[email]; ok {
		return cloneUser(s.byID[id]), nil
	}
	if id, ok := s.byUsername[username]; ok {
		return cloneUser(s.byID[id]), nil
	}
	return nil, common.ErrNotFound
}

func (s *MemoryAccountStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return nil, common.ErrConflict
	}
	if _, ok := s.byUsername[user.Username]; ok {
		return nil, common.ErrConflict
	}

	now := time.Now()
	stored := cloneUser(user)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.FailedLoginAttempts = 0
	stored.LockedUntil = nil
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.byID[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID
	s.byUsername[stored.Username] = stored.ID

	return cloneUser(stored), nil
}

func (s *MemoryAccountStore) ApplyLoginOutcome(ctx context.Context, id uuid.UUID, outcome lockout.Outcome, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.ApplyLockoutState(s.policy.Apply(u.LockoutState(), outcome, now))
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.LockedUntil != nil {
		t := *u.LockedUntil
		c.LockedUntil = &t
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}
