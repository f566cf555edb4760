package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionUser is the account snapshot kept in a session. Its presence is
// what marks a request as authenticated.
type SessionUser struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserSession is a server-side session stored under an opaque token.
type UserSession struct {
	User         SessionUser `json:"user"`
	IPAddress    string      `json:"ip_address"`
	UserAgent    string      `json:"user_agent"`
	Location     string      `json:"location"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

// NewSessionUser builds the session snapshot of u.
func NewSessionUser(u *User) SessionUser {
	return SessionUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLogin,
	}
}
