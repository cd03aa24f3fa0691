package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"attendcal/internal/attendance"
	"attendcal/internal/auth"
	"attendcal/internal/config"
	"attendcal/internal/handler"
	"attendcal/internal/httpmiddleware"
	"attendcal/internal/store"
)

func main() {
	cfg := config.Load()
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App, log zerolog.Logger) error {
	var (
		attStore attendance.Store
		db       *store.DB
	)
	switch cfg.StoreBackend {
	case "file":
		attStore = attendance.NewFileStore(cfg.DataFile)
		log.Info().Str("path", cfg.DataFile).Msg("using file store")
	default:
		var err error
		db, err = store.NewDB(cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return err
		}
		defer db.Close()
		pg := attendance.NewPostgresStore(db.Client)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return err
		}
		attStore = pg
		log.Info().Msg("using postgres store")
	}
	defer attStore.Close()

	// Redis month cache (nil when not configured)
	var redisClient *store.Redis
	var cache *attendance.MonthCache
	if cfg.RedisAddr != "" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		cache = attendance.NewMonthCache(redisClient.Client, cfg.CacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("calendar cache enabled")
	} else {
		log.Info().Msg("calendar cache disabled (REDIS_ADDR not set)")
	}

	passwordHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	authn := auth.New(auth.Credentials{
		Username:     cfg.AdminUsername,
		PasswordHash: passwordHash,
	}, cfg.SessionSecret, cfg.SessionTTL)

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Request correlation
	r.Use(httpmiddleware.RequestID())

	// Rate limiting
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		storeHealthy := true
		if db != nil {
			storeHealthy = db.Client.PingContext(c.Request.Context()) == nil
		}
		status := http.StatusOK
		if !storeHealthy {
			status = http.StatusServiceUnavailable
		}
		body := gin.H{"status": "ok", "store": storeHealthy}
		if redisClient != nil {
			body["redis"] = redisClient.Healthy(c.Request.Context())
		}
		c.JSON(status, body)
	})

	h := handler.New(attStore, authn, cache, log)
	h.Register(r)

	r.StaticFile("/", "web/index.html")
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir("web"))))

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}

	log.Info().Msg("server exited")
	return nil
}

// CORS middleware for browser requests; credentials stay allowed because the
// session rides in a cookie.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
