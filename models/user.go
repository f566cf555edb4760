package models

import (
	"time"

	"github.com/Krish-Depani/secure-auth/lockout"
	"github.com/google/uuid"
)

type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username            string    `gorm:"uniqueIndex;not null"`
	Email               string    `gorm:"uniqueIndex;not null"`
	PasswordHash        string    `gorm:"not null"`
	FailedLoginAttempts int       `gorm:"not null"`
	LockedUntil         *time.Time
	LastLogin           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// LockoutState extracts the fields the lockout policy works on.
func (u *User) LockoutState() lockout.State {
	return lockout.State{
		FailedAttempts: u.FailedLoginAttempts,
		LockedUntil:    u.LockedUntil,
		LastLoginAt:    u.LastLogin,
	}
}

// ApplyLockoutState copies a policy result back onto the user.
func (u *User) ApplyLockoutState(s lockout.State) {
	u.FailedLoginAttempts = s.FailedAttempts
	u.LockedUntil = s.LockedUntil
	u.LastLogin = s.LastLoginAt
}
