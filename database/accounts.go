package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/lockout"
	"github.com/Krish-Depani/secure-auth/models"
)

// AccountStore is the postgres-backed user store. Uniqueness comes from the
// unique indexes on users.username and users.email; lockout updates hold a
// row lock for the whole read-modify-write.
type AccountStore struct {
	db     *gorm.DB
	policy lockout.Policy
}

func NewAccountStore(db *gorm.DB, policy lockout.Policy) *AccountStore {
	return &AccountStore{db: db, policy: policy}
}

func (s *AccountStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *AccountStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ? OR username = ?", email, username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *AccountStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (s *AccountStore) ApplyLoginOutcome(ctx context.Context, id uuid.UUID, outcome lockout.Outcome, now time.Time) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&user).Error; err != nil {
			return err
		}

		user.ApplyLockoutState(s.policy.Apply(user.LockoutState(), outcome, now))
		user.UpdatedAt = now

		return tx.Model(&models.User{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"failed_login_attempts": user.FailedLoginAttempts,
				"locked_until":          user.LockedUntil,
				"last_login":            user.LastLogin,
				"updated_at":            now,
			}).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
