package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/database"
	"github.com/Krish-Depani/secure-auth/models"
	"github.com/Krish-Depani/secure-auth/services"
)

// SecurityInfo is the policy summary shown on the security page.
type SecurityInfo struct {
	RateLimitMax    int64
	RateLimitWindow time.Duration
	SessionTTL      time.Duration
}

type DashboardController struct {
	auth     *services.AuthService
	sessions database.SessionStore
	cookie   CookieConfig
	info     SecurityInfo
	log      zerolog.Logger
	now      func() time.Time
}

func NewDashboardController(auth *services.AuthService, sessions database.SessionStore, cookie CookieConfig, info SecurityInfo, log zerolog.Logger) *DashboardController {
	return &DashboardController{
		auth:     auth,
		sessions: sessions,
		cookie:   cookie,
		info:     info,
		log:      log.With().Str("component", "dashboard").Logger(),
		now:      time.Now,
	}
}

// Dashboard reloads the account and refreshes the session copy of it.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	session := currentSession(c)
	account, ok := dc.loadAccount(c, session, "Error loading dashboard", "/auth/login")
	if !ok {
		return
	}

	now := dc.now()
	session.User = models.NewSessionUser(account)
	session.LastActivity = now
	if ttl := session.ExpiresAt.Sub(now); ttl > 0 {
		if err := dc.sessions.SetSession(c.Request.Context(), currentSessionToken(c), session, ttl); err != nil {
			dc.log.Warn().Err(err).Msg("session refresh failed")
		}
	}

	render(c, http.StatusOK, "dashboard.html", "Dashboard", gin.H{"account": account})
}

func (dc *DashboardController) Profile(c *gin.Context) {
	account, ok := dc.loadAccount(c, currentSession(c), "Error loading profile", "/dashboard")
	if !ok {
		return
	}
	render(c, http.StatusOK, "profile.html", "Profile", gin.H{"account": account})
}

// Security shows the lockout policy and where the account stands in it.
func (dc *DashboardController) Security(c *gin.Context) {
	session := currentSession(c)
	account, ok := dc.loadAccount(c, session, "Error loading security settings", "/dashboard")
	if !ok {
		return
	}

	policy := dc.auth.Policy()
	ev := policy.Evaluate(account.LockoutState(), dc.now())

	render(c, http.StatusOK, "security.html", "Security Features", gin.H{
		"account":         account,
		"session":         session,
		"lockStatus":      ev.Status.String(),
		"maxAttempts":     policy.MaxAttempts,
		"lockMinutes":     int(policy.LockDuration.Minutes()),
		"rateLimitMax":    dc.info.RateLimitMax,
		"rateLimitWindow": dc.info.RateLimitWindow.String(),
		"sessionTTL":      dc.info.SessionTTL.String(),
	})
}

// loadAccount fetches the signed-in account. A vanished account ends the
// session; other failures redirect to fallback with errMsg.
func (dc *DashboardController) loadAccount(c *gin.Context, session *models.UserSession, errMsg, fallback string) (*models.User, bool) {
	account, err := dc.auth.Account(c.Request.Context(), session.User.ID)
	if err == nil {
		return account, true
	}

	if errors.Is(err, common.ErrNotFound) {
		dc.log.Warn().Str("user_id", session.User.ID.String()).Msg("session user no longer exists")
		if err := dc.sessions.DeleteSession(c.Request.Context(), currentSessionToken(c)); err != nil {
			dc.log.Error().Err(err).Msg("session delete failed")
		}
		dc.cookie.clear(c)
		addFlash(c, flashError, "User not found")
		c.Redirect(http.StatusFound, "/auth/login")
		return nil, false
	}

	addFlash(c, flashError, errMsg)
	c.Redirect(http.StatusFound, fallback)
	return nil, false
}
