// Package mockapi is a development stand-in for the food delivery service. It
// serves the same endpoints with the same semantics so the CLI can be used
// and tested without the public server.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodctl/foodctl/internal/mockapi/auth"
	"github.com/foodctl/foodctl/internal/mockapi/models"
	"github.com/foodctl/foodctl/internal/validation"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	db      *gorm.DB
	config  *Config
	logger  zerolog.Logger
	issuer  *auth.Issuer
	sweeper *cron.Cron
	now     func() time.Time
}

// New creates a new server instance on an open database
func New(cfg *Config, db *gorm.DB, zlog zerolog.Logger) (*Server, error) {
	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	seeded, err := seedMenu(db)
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		zlog.Info().Int("dishes", seeded).Msg("Seeded menu")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if secret, err = generateSecret(); err != nil {
			return nil, err
		}
		zlog.Warn().Msg("FOODMOCK_JWT_SECRET not set - tokens will not survive a restart")
	}
	issuer, err := auth.NewIssuer(secret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	// Register custom validators on gin's binding engine
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Register(v)
	}

	server := &Server{
		db:     db,
		config: cfg,
		logger: zlog,
		issuer: issuer,
		now:    time.Now,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// OpenDatabase opens the SQLite database with production settings. In-memory
// databases are limited to one connection so every query sees the same data.
func OpenDatabase(url string, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8   // Reduced for SQLite efficiency
		maxIdleConns    = 4   // Reduced proportionally
		connMaxLifetime = 300 // 5 minutes
		busyTimeout     = 5000
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(url), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	inMemory := strings.Contains(url, ":memory:") || strings.Contains(url, "mode=memory")
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)
	}

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
	}
	if !inMemory {
		// WAL mode must be set first for optimal concurrency
		pragmas = append([]string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware for the browser client. cors.New panics on an empty
	// origin list, so no origins means no CORS at all.
	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public endpoints (no auth required)
	s.router.POST("/api/account/register", s.register)
	s.router.POST("/api/account/login", s.login)
	s.router.GET("/api/dish", s.listDishes)
	s.router.GET("/api/dish/:id", s.getDish)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.issuer, s.logger))
	{
		// Account
		api.POST("/account/logout", s.logout)
		api.GET("/account/profile", s.getProfile)
		api.PUT("/account/profile", s.updateProfile)

		// Rating
		api.GET("/dish/:id/rating/check", s.checkRating)
		api.POST("/dish/:id/rating", s.setRating)

		// Basket
		api.GET("/basket", s.getBasket)
		api.POST("/basket/dish/:dishId", s.addToBasket)
		api.DELETE("/basket/dish/:dishId", s.removeFromBasket)

		// Orders
		api.GET("/order", s.listOrders)
		api.GET("/order/:id", s.getOrder)
		api.POST("/order", s.createOrder)
		api.POST("/order/:id/status", s.confirmDelivery)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": s.now().UTC(),
		"service":   "foodmock",
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	if err := s.startSweeper(); err != nil {
		return err
	}
	defer s.stopSweeper()

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Close closes the database connection to flush WAL writes
func (s *Server) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewInMemory creates a server on a fresh in-memory database with a random
// secret. Used by tests and for throwaway local runs.
func NewInMemory(zlog zerolog.Logger) (*Server, error) {
	db, err := OpenDatabase(":memory:", zlog)
	if err != nil {
		return nil, err
	}
	return New(&Config{
		TokenTTL:      time.Hour,
		CORSOrigins:   DefaultCORSOrigins,
		SweepSchedule: "@every 1m",
	}, db, zlog)
}
