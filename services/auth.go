// Package services holds the authentication use cases. AuthService is the
// only type HTTP handlers talk to; storage and hashing are injected.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/lockout"
	"github.com/Krish-Depani/secure-auth/models"
	"github.com/Krish-Depani/secure-auth/validators"
)

// AccountStore persists users. ApplyLoginOutcome must run the lockout
// transition as one atomic read-modify-write per account, and Create must
// rely on a storage-level uniqueness guarantee.
type AccountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	ApplyLoginOutcome(ctx context.Context, id uuid.UUID, outcome lockout.Outcome, now time.Time) (*models.User, error)
}

type LoginStatus int

const (
	LoginSucceeded LoginStatus = iota
	LoginInvalidCredentials
	LoginAccountLocked
)

func (s LoginStatus) String() string {
	switch s {
	case LoginSucceeded:
		return "success"
	case LoginInvalidCredentials:
		return "invalid_credentials"
	case LoginAccountLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// LoginResult is the outcome of AuthService.Login.
type LoginResult struct {
	Status LoginStatus
	// Account is set only for LoginSucceeded.
	Account *models.User
	// AttemptsRemaining is only known for existing accounts. Handlers do not
	// show it, so a wrong password reads the same as an unknown email. It
	// is meant for logging.
	AttemptsRemaining int
	// LockMinutesRemaining is set for LoginAccountLocked.
	LockMinutesRemaining int
	// LockedByThisAttempt marks the failed attempt that triggered the lock.
	LockedByThisAttempt bool
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type AuthService struct {
	store     AccountStore
	hasher    PasswordHasher
	policy    lockout.Policy
	logger    zerolog.Logger
	dummyHash string
}

func NewAuthService(store AccountStore, hasher PasswordHasher, policy lockout.Policy, logger zerolog.Logger) *AuthService {
	s := &AuthService{
		store:  store,
		hasher: hasher,
		policy: policy,
		logger: logger.With().Str("component", "auth").Logger(),
	}
	// Unknown e-mails are checked against this hash so they cost as much as
	// a wrong password.
	if h, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = h
	}
	return s
}

// Policy returns the lockout policy in force.
func (s *AuthService) Policy() lockout.Policy {
	return s.policy
}

// Account loads a user by id. It returns common.ErrNotFound when the account
// no longer exists.
func (s *AuthService) Account(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("account lookup failed")
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return user, nil
}

// Register validates the input, checks uniqueness and stores a new user.
// It returns validators.ValidationErrors for bad input and common.ErrConflict
// when the username or email is taken, without saying which.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	req := validators.RegisterRequest{
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	if errs := validators.ValidateRegisterRequest(&req); len(errs) > 0 {
		return nil, errs
	}

	log := s.logger.With().Str("email", req.Email).Logger()

	_, err := s.store.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	switch {
	case err == nil:
		log.Info().Msg("registration rejected: user already exists")
		return nil, common.ErrConflict
	case !errors.Is(err, common.ErrNotFound):
		log.Error().Err(err).Msg("registration lookup failed")
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing failed")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			log.Info().Msg("registration rejected: user already exists")
			return nil, common.ErrConflict
		}
		log.Error().Err(err).Msg("registration insert failed")
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login checks credentials at now and applies the lockout transition. The
// error return is reserved for storage faults.
func (s *AuthService) Login(ctx context.Context, email, password string, now time.Time) (LoginResult, error) {
	email = validators.NormalizeEmail(email)
	log := s.logger.With().Str("email", email).Logger()

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			log.Info().Msg("login failed: unknown email")
			return LoginResult{Status: LoginInvalidCredentials}, nil
		}
		log.Error().Err(err).Msg("login lookup failed")
		return LoginResult{}, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	ev := s.policy.Evaluate(user.LockoutState(), now)
	if ev.Status == lockout.StatusLocked {
		log.Info().Int("remaining_minutes", ev.RemainingMinutes).Msg("login rejected: account locked")
		return LoginResult{
			Status:               LoginAccountLocked,
			LockMinutesRemaining: ev.RemainingMinutes,
		}, nil
	}

	outcome := lockout.OutcomeFailure
	if s.hasher.Verify(password, user.PasswordHash) {
		outcome = lockout.OutcomeSuccess
	}

	updated, err := s.store.ApplyLoginOutcome(ctx, user.ID, outcome, now)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn().Msg("login failed: account vanished during login")
			return LoginResult{Status: LoginInvalidCredentials}, nil
		}
		log.Error().Err(err).Msg("recording login outcome failed")
		return LoginResult{}, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if outcome == lockout.OutcomeSuccess {
		log.Info().Str("user_id", updated.ID.String()).Msg("login succeeded")
		return LoginResult{
			Status:            LoginSucceeded,
			Account:           updated,
			AttemptsRemaining: s.policy.AttemptsRemaining(updated.LockoutState()),
		}, nil
	}

	after := s.policy.Evaluate(updated.LockoutState(), now)
	if after.Status == lockout.StatusLocked {
		log.Warn().Int("failed_attempts", updated.FailedLoginAttempts).Msg("account locked after failed login")
		return LoginResult{
			Status:               LoginAccountLocked,
			LockMinutesRemaining: after.RemainingMinutes,
			LockedByThisAttempt:  updated.LockedUntil.Equal(s.policy.LockExpiry(now)),
		}, nil
	}

	remaining := s.policy.AttemptsRemaining(updated.LockoutState())
	log.Info().Int("attempts_remaining", remaining).Msg("login failed: invalid password")
	return LoginResult{
		Status:            LoginInvalidCredentials,
		AttemptsRemaining: remaining,
	}, nil
}
