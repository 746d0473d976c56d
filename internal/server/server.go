// Package server wires storage, services and HTTP routes into one gin engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/user-center/internal/cache"
	"github.com/user-center/internal/config"
	"github.com/user-center/internal/database"
	"github.com/user-center/internal/handler"
	"github.com/user-center/internal/middleware"
	"github.com/user-center/internal/repository"
	"github.com/user-center/internal/service"
	"github.com/user-center/internal/validation"
	"github.com/user-center/pkg/crypto"
	"github.com/user-center/pkg/response"
)

const sessionName = "usercenter_session"

// Server holds the database, the ticket store and the gin engine
type Server struct {
	cfg     *config.Config
	version string
	db      *gorm.DB
	rdb     *redis.Client
	store   cache.Store
	router  *gin.Engine
}

// New validates cfg, opens the database, selects the ticket store and builds the routes
func New(ctx context.Context, cfg *config.Config, version string) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Server{cfg: cfg, version: version, db: db}

	if cfg.Redis.Enabled {
		s.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.store = cache.NewRedisStore(s.rdb, "")
	} else {
		mem, err := cache.NewMemoryStore(cfg.Security.TicketCapacity)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.store = mem
	}

	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	validation.RegisterGinValidators()

	userRepo := repository.NewUserRepository(s.db)
	profileRepo := repository.NewProfileRepository(s.db)
	hasher := crypto.NewHasher(s.cfg.Security.BcryptCost)

	captchaService := service.NewCaptchaService(s.store, s.cfg.Security.CaptchaTTL, s.cfg.Security.CaptchaEnabled)
	authService := service.NewAuthService(userRepo, profileRepo, hasher, captchaService, s.cfg.JWT)
	recoveryService := service.NewRecoveryService(userRepo, hasher, s.store, s.cfg.Security)
	profileService := service.NewProfileService(userRepo, profileRepo)

	authHandler := handler.NewAuthHandler(authService, captchaService)
	userHandler := handler.NewUserHandler(authService, profileService)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggerMiddleware())

	sessionStore := cookie.NewStore([]byte(s.cfg.Security.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.sessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Server.Mode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, sessionStore))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	audit := middleware.AuditLoggerMiddleware()
	authMiddleware := middleware.AuthMiddleware(authService)

	api := router.Group("/api")
	{
		authHandler.RegisterRoutes(api, audit)
		userHandler.RegisterRoutes(api, authMiddleware, audit)
		recoveryHandler.RegisterRoutes(api, audit)
	}

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "not found")
	})

	return router
}

// sessionMaxAge keeps the cookie alive as long as the longest ticket it can point at
func (s *Server) sessionMaxAge() time.Duration {
	ttl := s.cfg.Security.RecoveryTTL
	if s.cfg.Security.CaptchaTTL > ttl {
		ttl = s.cfg.Security.CaptchaTTL
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return ttl
}

// Router returns the HTTP handler
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close releases the database and Redis connections
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
