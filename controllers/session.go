package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/models"
)

const (
	SessionCookieName = "session_token"

	ctxSession      = "session"
	ctxSessionToken = "sessionToken"

	flashSuccess = "success_msg"
	flashError   = "error_msg"

	// locationLookupTimeout bounds the geolocation call made during login.
	locationLookupTimeout = 2 * time.Second
)

// CookieConfig controls the auth session cookie.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

func (cc CookieConfig) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(cc.TTL.Seconds()), "/", "", cc.Secure, true)
}

func (cc CookieConfig) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", cc.Secure, true)
}

// newSession stores a fresh server-side session for user and returns its token.
func (ac *AuthController) newSession(c *gin.Context, user *models.User, now time.Time) (string, error) {
	token := uuid.New().String()

	lookupCtx, cancel := context.WithTimeout(c.Request.Context(), locationLookupTimeout)
	defer cancel()

	session := &models.UserSession{
		User:         models.NewSessionUser(user),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		Location:     ac.locator.GetIPLocation(lookupCtx, c.ClientIP()),
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(ac.cookie.TTL),
	}
	if err := ac.sessions.SetSession(c.Request.Context(), token, session, ac.cookie.TTL); err != nil {
		return "", err
	}
	return token, nil
}

// LoadSession resolves the session cookie, if any, and exposes the session to
// later handlers. Unknown tokens clear the cookie.
func (ac *AuthController) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := ac.sessions.GetSession(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(ctxSession, session)
			c.Set(ctxSessionToken, token)
		case errors.Is(err, common.ErrNotFound):
			ac.cookie.clear(c)
		default:
			ac.log.Error().Err(err).Msg("session lookup failed")
		}
		c.Next()
	}
}

// RequireAuth sends anonymous visitors to the login page.
func (ac *AuthController) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) == nil {
			addFlash(c, flashError, "Please login to access this page")
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated sends signed-in users to the dashboard.
func (ac *AuthController) RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) != nil {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *models.UserSession {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	session, _ := v.(*models.UserSession)
	return session
}

func currentSessionToken(c *gin.Context) string {
	return c.GetString(ctxSessionToken)
}

func flashStore(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}

func addFlash(c *gin.Context, key, msg string) {
	s := flashStore(c)
	if s == nil {
		return
	}
	s.AddFlash(msg, key)
	_ = s.Save()
}

func popFlashes(c *gin.Context, key string) []string {
	s := flashStore(c)
	if s == nil {
		return nil
	}
	raw := s.Flashes(key)
	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok && strings.TrimSpace(msg) != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// render fills in the data every page expects: title, flashes and the
// signed-in user.
func render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data[flashSuccess] = popFlashes(c, flashSuccess)
	data[flashError] = popFlashes(c, flashError)
	if s := flashStore(c); s != nil {
		_ = s.Save()
	}

	if session := currentSession(c); session != nil {
		data["user"] = session.User
	}
	c.HTML(status, name, data)
}
