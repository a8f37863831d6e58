// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/favorite"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/report"
	"github.com/optommarket/backend/internal/domain/upload"
	"github.com/optommarket/backend/internal/domain/user"
	redisdb "github.com/optommarket/backend/internal/infrastructure/database/redis"
	"github.com/optommarket/backend/internal/interfaces/http/handlers"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
	"github.com/optommarket/backend/internal/interfaces/http/routes"
	"github.com/optommarket/backend/internal/pkg/auth"
	"github.com/optommarket/backend/internal/pkg/pdf"
	"github.com/optommarket/backend/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	log         *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	store       storage.Storage
	redisClient *redisdb.Client
	services    *routes.Services
	rateCounter middleware.RateCounter
	authn       *middleware.Authenticator
	startedAt   time.Time
}

// NewServer wires the services over store and builds the router.
// redisClient may be nil; the cache, token revocation and shared rate
// limiting are then skipped or kept in process.
func NewServer(cfg *config.Config, log *logrus.Logger, store storage.Storage, redisClient *redisdb.Client) *Server {
	s := &Server{
		config:      cfg,
		log:         log,
		store:       store,
		redisClient: redisClient,
		startedAt:   time.Now(),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	s.buildServices()

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		log.WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) buildServices() {
	var (
		cache   product.TreeCache
		revoker user.TokenRevoker
	)
	if s.redisClient != nil {
		cache = redisdb.NewCategoryTreeCache(s.redisClient, s.config.Business.CategoryCacheTTL)
		revoker = redisdb.NewTokenRevoker(s.redisClient)
		s.rateCounter = redisdb.NewRateCounter(s.redisClient)
	}

	tokens := auth.NewJWTManager(s.config)
	recorder := activity.NewRecorder(s.store, s.log)
	discounts := discount.NewService(s.store, s.log)
	users := user.NewService(s.store, auth.NewPasswordManager(s.config), tokens, revoker, recorder, s.log)

	s.services = &routes.Services{
		Products:   product.NewService(s.store, cache, recorder, s.log),
		Carts:      cart.NewService(s.store, s.store, recorder, s.log),
		Discounts:  discounts,
		Orders:     order.NewService(s.store, s.store, s.store, discounts, recorder, s.config.Business.MinimumOrderAmount, s.log),
		Users:      users,
		Favorites:  favorite.NewService(s.store, s.store),
		Blog:       blog.NewService(s.store, s.log),
		Chat:       chat.NewService(s.store),
		Activities: recorder,
		Reports:    report.NewService(s.store, s.store, s.store, s.store, s.log).WithLocation(s.config.Location()),
		Uploads:    upload.NewService(s.config.Upload),
		Invoices:   pdf.NewService(s.config),
	}
	s.authn = middleware.NewAuthenticator(tokens, users, s.config.JWT.CookieName)
}

// Handler exposes the router, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":    s.config.Server.Port,
		"api":     "/api",
		"health":  "/health",
		"storage": s.config.Database.Driver,
		"redis":   s.redisClient != nil,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(middleware.Recovery(s.log))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	s.gin.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.rateCounter, s.log))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodySize))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	if strings.HasPrefix(s.config.Upload.PublicURL, "/") {
		s.gin.Static(s.config.Upload.PublicURL, s.config.Upload.LocalPath)
	}

	api := s.gin.Group("/api")
	routes.SetupRoutes(api, s.services, s.authn, s.config, s.log)

	s.gin.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"code":  "NOT_FOUND",
		})
	})
}

// healthCheck reports storage and Redis reachability
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("health check: storage unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	if s.redisClient != nil {
		if err := s.redisClient.Health(ctx); err != nil {
			s.log.WithError(err).Warn("health check: redis unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
