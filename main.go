package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Krish-Depani/secure-auth/config"
	"github.com/Krish-Depani/secure-auth/controllers"
	"github.com/Krish-Depani/secure-auth/database"
	"github.com/Krish-Depani/secure-auth/lockout"
	"github.com/Krish-Depani/secure-auth/middleware"
	"github.com/Krish-Depani/secure-auth/routes"
	"github.com/Krish-Depani/secure-auth/services"
	"github.com/Krish-Depani/secure-auth/utils"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := lockout.Policy{MaxAttempts: env.LockoutMaxAttempts, LockDuration: env.LockoutDuration}

	var accounts services.AccountStore
	switch env.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory account store; data is lost on restart")
		accounts = database.NewMemoryAccountStore(policy)
	default:
		pgClient, err := database.NewPostgresClient(env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to postgres")
		}
		if err := database.Migrate(ctx, pgClient); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		accounts = database.NewAccountStore(pgClient, policy)
	}

	var (
		sessionStore database.SessionStore
		limitRedis   *redis.Client
	)
	if env.RedisAddr != "" {
		redisClient, err := database.GetRedisClient(env.RedisAddr, env.RedisPass, env.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		defer redisClient.Close()
		sessionStore = redisClient
		limitRedis = redisClient.Client()
	} else {
		log.Warn().Msg("REDIS_ADDR not set; sessions and rate limits are kept in memory")
		sessionStore = database.NewMemorySessionStore()
	}

	limitStore, err := middleware.NewRateLimitStore(limitRedis)
	if err != nil {
		log.Fatal().Err(err).Msg("create rate limit store")
	}

	flashSecret := []byte(env.SessionSecret)
	if len(flashSecret) == 0 {
		log.Warn().Msg("SESSION_SECRET not set; using a random key for this process")
		flashSecret = make([]byte, 32)
		if _, err := rand.Read(flashSecret); err != nil {
			log.Fatal().Err(err).Msg("generate session key")
		}
	}

	metrics := middleware.NewMetrics()
	authService := services.NewAuthService(accounts, services.NewBcryptHasher(env.BcryptCost), policy, log)
	cookieCfg := controllers.CookieConfig{TTL: env.SessionTTL, Secure: env.IsProduction()}

	authController := controllers.NewAuthController(authService, sessionStore, utils.NewIPLocator(), metrics, cookieCfg, log)
	dashboardController := controllers.NewDashboardController(authService, sessionStore, cookieCfg, controllers.SecurityInfo{
		RateLimitMax:    env.RateLimitMax,
		RateLimitWindow: env.RateLimitWindow,
		SessionTTL:      env.SessionTTL,
	}, log)
	systemController := controllers.NewSystemController(!env.IsProduction(), log)

	r, err := routes.NewRouter(routes.Options{
		FlashSecret:     flashSecret,
		SecureCookies:   env.IsProduction(),
		Development:     !env.IsProduction(),
		RateLimitStore:  limitStore,
		RateLimitMax:    env.RateLimitMax,
		RateLimitWindow: env.RateLimitWindow,
		Metrics:         metrics,
		Logger:          log,
	}, authController, dashboardController, systemController)
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", env.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
