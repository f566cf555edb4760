package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/database"
	"github.com/Krish-Depani/secure-auth/middleware"
	"github.com/Krish-Depani/secure-auth/services"
	"github.com/Krish-Depani/secure-auth/validators"
)

const (
	msgRegistered       = "Registration successful! You can now login."
	msgRegisterFailed   = "Registration failed. Please try again."
	msgInvalidLogin     = "Invalid email or password."
	msgLoginFailed      = "Login failed. Please try again."
	msgAccountLockedFmt = "Account locked due to too many failed login attempts. Try again in %d minutes."
	msgLogoutFailed     = "Error logging out"
)

// Locator labels a client IP with an approximate location.
type Locator interface {
	GetIPLocation(ctx context.Context, ipAddress string) string
}

type AuthController struct {
	auth     *services.AuthService
	sessions database.SessionStore
	locator  Locator
	metrics  *middleware.Metrics
	cookie   CookieConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthController(auth *services.AuthService, sessions database.SessionStore, locator Locator, metrics *middleware.Metrics, cookie CookieConfig, log zerolog.Logger) *AuthController {
	return &AuthController{
		auth:     auth,
		sessions: sessions,
		locator:  locator,
		metrics:  metrics,
		cookie:   cookie,
		log:      log.With().Str("component", "http").Logger(),
		now:      time.Now,
	}
}

func (ac *AuthController) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", "Login", nil)
}

func (ac *AuthController) ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.html", "Register", nil)
}

// Register handles the registration form.
func (ac *AuthController) Register(c *gin.Context) {
	var req validators.RegisterRequest
	_ = c.ShouldBind(&req)

	_, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})

	var verrs validators.ValidationErrors
	switch {
	case err == nil:
		ac.recordRegistration("success")
		addFlash(c, flashSuccess, msgRegistered)
		c.Redirect(http.StatusFound, "/auth/login")
		return
	case errors.As(err, &verrs):
		ac.recordRegistration("invalid")
		addFlash(c, flashError, strings.Join(verrs.Messages(), ". "))
	case errors.Is(err, common.ErrConflict):
		ac.recordRegistration("conflict")
		addFlash(c, flashError, "User with this email or username already exists")
	default:
		ac.recordRegistration("error")
		addFlash(c, flashError, msgRegisterFailed)
	}
	c.Redirect(http.StatusFound, "/auth/register")
}

// Login handles the login form and starts a session on success.
func (ac *AuthController) Login(c *gin.Context) {
	var req validators.LoginRequest
	_ = c.ShouldBind(&req)

	if verrs := validators.ValidateLoginRequest(&req); len(verrs) > 0 {
		ac.recordLogin("invalid")
		ac.failLogin(c, strings.Join(verrs.Messages(), ". "))
		return
	}

	now := ac.now()
	res, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password, now)
	if err != nil {
		ac.recordLogin("error")
		ac.failLogin(c, msgLoginFailed)
		return
	}

	switch res.Status {
	case services.LoginSucceeded:
		// Never reuse a token that existed before authentication.
		if old := currentSessionToken(c); old != "" {
			_ = ac.sessions.DeleteSession(c.Request.Context(), old)
		}

		token, err := ac.newSession(c, res.Account, now)
		if err != nil {
			ac.log.Error().Err(err).Str("user_id", res.Account.ID.String()).Msg("session create failed")
			ac.recordLogin("error")
			ac.failLogin(c, msgLoginFailed)
			return
		}

		ac.recordLogin(res.Status.String())
		ac.cookie.set(c, token)
		addFlash(c, flashSuccess, fmt.Sprintf("Welcome back, %s!", res.Account.Username))
		c.Redirect(http.StatusFound, "/dashboard")
	case services.LoginAccountLocked:
		if res.LockedByThisAttempt {
			ac.recordLogin("locked_now")
		} else {
			ac.recordLogin(res.Status.String())
		}
		ac.failLogin(c, fmt.Sprintf(msgAccountLockedFmt, res.LockMinutesRemaining))
	default:
		ac.recordLogin(res.Status.String())
		ac.failLogin(c, msgInvalidLogin)
	}
}

func (ac *AuthController) failLogin(c *gin.Context, msg string) {
	addFlash(c, flashError, msg)
	c.Redirect(http.StatusFound, "/auth/login")
}

// Logout destroys the server-side session and clears the cookie.
func (ac *AuthController) Logout(c *gin.Context) {
	token := currentSessionToken(c)
	if token == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := ac.sessions.DeleteSession(c.Request.Context(), token); err != nil {
		ac.log.Error().Err(err).Msg("logout failed")
		addFlash(c, flashError, msgLogoutFailed)
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	ac.cookie.clear(c)
	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) recordLogin(result string) {
	if ac.metrics != nil {
		ac.metrics.RecordLogin(result)
	}
}

func (ac *AuthController) recordRegistration(result string) {
	if ac.metrics != nil {
		ac.metrics.RecordRegistration(result)
	}
}
