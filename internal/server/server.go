package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"target-shooting/internal/config"
	"target-shooting/internal/scoring"
	"target-shooting/internal/store"
)

type Server struct {
	log      *zap.Logger
	cfg      config.Config
	policy   *scoring.Policy
	password string
	games    *GameService
	sessions *sessionStore
	limiter  *rateLimiter
	metrics  *metrics
	router   *gin.Engine
}

// New wires the HTTP server around a storage gateway. conn may be nil when
// games live in memory or in a file; sessions then stay in process memory.
func New(gw store.Gateway, conn *gorm.DB, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	access, err := cfg.Access.Resolve()
	if err != nil {
		return nil, err
	}
	policy, err := access.Policy()
	if err != nil {
		return nil, err
	}
	registerValidators()
	m := newMetrics()
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	s := &Server{
		log:      logger,
		cfg:      cfg,
		policy:   policy,
		password: access.Password,
		games:    NewGameService(gw, cfg.UpdateRetries, m),
		sessions: newSessionStore(conn, ttl),
		limiter:  newRateLimiter(cfg.LoginRatePerMinute),
		metrics:  m,
	}
	router, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() (*gin.Engine, error) {
	if s.cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	// ClientIP only reads X-Forwarded-For from configured proxies; the login
	// limiter keys on it.
	if err := router.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(gin.Recovery(), s.requestLogger(), s.cors())

	router.GET("/", s.handleHome)
	router.GET("/games/:id/results", s.handleResultsView)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)
	api.GET("/me", s.requireUser, s.handleMe)
	api.GET("/health", s.handleHealth)
	api.GET("/points", s.handlePoints)

	api.GET("/games", s.handleListGames)
	api.GET("/games/:id", s.handleGetGame)
	api.POST("/games", s.requireAdmin, s.handleCreateGame)
	api.PUT("/games/:id", s.requireAdmin, s.handleUpdateGame)
	api.DELETE("/games", s.requireAdmin, s.handleDeleteGames)

	api.POST("/games/:id/hits", s.requireUser, s.handleRecordHit)
	api.POST("/games/:id/complete-room", s.requireUser, s.handleCompleteRoom)
	api.GET("/games/:id/totals", s.requireAdmin, s.handleTotals)
	api.GET("/games/:id/leaderboard", s.requireAdmin, s.handleLeaderboard)

	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found")
	})
	return router, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// cors allows the configured origins with credentials.
func (s *Server) cors() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.cfg.CORSOrigins))
	for _, origin := range s.cfg.CORSOrigins {
		allowed[origin] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
