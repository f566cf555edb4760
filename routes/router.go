package routes

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/Krish-Depani/secure-auth/controllers"
	"github.com/Krish-Depani/secure-auth/middleware"
	"github.com/Krish-Depani/secure-auth/views"
)

const flashCookieName = "flash"

type Options struct {
	FlashSecret     []byte
	SecureCookies   bool
	Development     bool
	RateLimitStore  limiter.Store
	RateLimitMax    int64
	RateLimitWindow time.Duration
	Metrics         *middleware.Metrics
	Logger          zerolog.Logger
}

// NewRouter builds the engine with the global middleware chain and every route.
func NewRouter(opts Options, authController *controllers.AuthController, dashboardController *controllers.DashboardController, systemController *controllers.SystemController) (*gin.Engine, error) {
	tmpl, err := views.Templates()
	if err != nil {
		return nil, err
	}

	flashStore := cookie.NewStore(opts.FlashSecret)
	flashStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(sessions.Sessions(flashCookieName, flashStore))
	router.Use(gin.CustomRecoveryWithWriter(io.Discard, systemController.Recover))
	router.Use(middleware.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(middleware.Secure(middleware.SecureOptions(opts.Development)))
	if opts.RateLimitStore != nil {
		router.Use(middleware.RateLimit(opts.RateLimitStore, opts.RateLimitMax, opts.RateLimitWindow, opts.Logger, opts.Metrics))
	}

	if opts.Metrics != nil {
		router.GET("/metrics", opts.Metrics.Handler())
	}
	SetupRoutes(router, authController, dashboardController, systemController)

	return router, nil
}
