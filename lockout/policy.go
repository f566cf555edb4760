// Package lockout implements the account lockout state machine.
//
// Everything here is pure: a Policy takes the current State of an account,
// an attempt outcome and the current time, and returns the next State.
// Persisting that State atomically is the caller's job.
//
// Lock expiry is lazy. A lock whose LockedUntil has passed is treated as
// over on the next read; nothing sweeps expired locks in the background.
package lockout

import "time"

const (
	DefaultMaxAttempts  = 5
	DefaultLockDuration = 15 * time.Minute
)

// Status describes whether an account may attempt to log in.
type Status int

const (
	// StatusOpen means no lock is set.
	StatusOpen Status = iota
	// StatusLocked means LockedUntil is set and still in the future.
	StatusLocked
	// StatusExpiredLock means LockedUntil is set but has passed and was not
	// cleared yet. It behaves like StatusOpen for password checks.
	StatusExpiredLock
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusLocked:
		return "locked"
	case StatusExpiredLock:
		return "expired_lock"
	default:
		return "unknown"
	}
}

// Outcome is the result of a password check.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// State is the lockout-relevant part of an account.
type State struct {
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
}

// Evaluation is the result of Policy.Evaluate.
type Evaluation struct {
	Status Status
	// RemainingMinutes is only set for StatusLocked and is never below 1.
	RemainingMinutes int
}

// Policy holds the lockout parameters.
type Policy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// DefaultPolicy locks an account for 15 minutes after 5 failed attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  DefaultMaxAttempts,
		LockDuration: DefaultLockDuration,
	}
}

// Evaluate reports the login eligibility of s at now.
func (p Policy) Evaluate(s State, now time.Time) Evaluation {
	if s.LockedUntil == nil {
		return Evaluation{Status: StatusOpen}
	}
	if s.LockedUntil.After(now) {
		return Evaluation{
			Status:           StatusLocked,
			RemainingMinutes: RemainingMinutes(*s.LockedUntil, now),
		}
	}
	return Evaluation{Status: StatusExpiredLock}
}

// Apply returns the state that follows s after an attempt with outcome o.
//
// A success always resets the counter and clears the lock. A failure on an
// expired lock restarts the counter at 1. Any other failure increments the
// counter and sets a lock once the counter reaches MaxAttempts. A failure
// that arrives while a lock is already active is counted without moving the
// lock; this only happens when concurrent attempts race past Evaluate.
func (p Policy) Apply(s State, o Outcome, now time.Time) State {
	next := State{
		FailedAttempts: s.FailedAttempts,
		LockedUntil:    s.LockedUntil,
		LastLoginAt:    s.LastLoginAt,
	}

	if o == OutcomeSuccess {
		at := now
		next.FailedAttempts = 0
		next.LockedUntil = nil
		next.LastLoginAt = &at
		return next
	}

	ev := p.Evaluate(s, now)
	if ev.Status == StatusExpiredLock {
		next.FailedAttempts = 1
		next.LockedUntil = nil
		return next
	}

	next.FailedAttempts = s.FailedAttempts + 1
	if ev.Status == StatusOpen && next.FailedAttempts >= p.maxAttempts() {
		until := p.LockExpiry(now)
		next.LockedUntil = &until
	}
	return next
}

// LockExpiry is the LockedUntil value a lock set at now receives.
func (p Policy) LockExpiry(now time.Time) time.Time {
	return now.Add(p.lockDuration())
}

// AttemptsRemaining is the number of failures s can absorb before a lock.
func (p Policy) AttemptsRemaining(s State) int {
	remaining := p.maxAttempts() - s.FailedAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingMinutes rounds the time left until lockedUntil up to whole
// minutes, with a floor of 1.
func RemainingMinutes(lockedUntil, now time.Time) int {
	left := lockedUntil.Sub(now)
	minutes := int(left / time.Minute)
	if left%time.Minute != 0 {
		minutes++
	}
	if minutes < 1 {
		return 1
	}
	return minutes
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) lockDuration() time.Duration {
	if p.LockDuration <= 0 {
		return DefaultLockDuration
	}
	return p.LockDuration
}
