package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gantt/internal/auth"
	"gantt/internal/storage/sqlite"
)

// Options holds the optional parts of the server setup.
type Options struct {
	// StaticDir holds the built Gantt client. Empty means API only.
	StaticDir string
	// Production refuses the dev login even in builds that include it.
	Production bool
	// Now replaces time.Now for the date-range fallback window.
	Now func() time.Time
}

// Server provides HTTP handlers for the Gantt chart backend.
type Server struct {
	engine     *gin.Engine
	store      *sqlite.Store
	sessions   *auth.Sessions
	verifier   auth.CredentialVerifier
	logger     *slog.Logger
	staticDir  string
	production bool
	now        func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, sessions *auth.Sessions, verifier auth.CredentialVerifier, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/health"))

	srv := &Server{
		engine:     router,
		store:      store,
		sessions:   sessions,
		verifier:   verifier,
		logger:     logger,
		staticDir:  opts.StaticDir,
		production: opts.Production,
		now:        opts.Now,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	requireAuth := auth.RequireAuth(s.sessions, s.logger)

	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/google", s.handleGoogleLogin)
			authGroup.GET("/verify", requireAuth, s.handleVerify)
			s.registerDevLogin(authGroup)
		}

		protected := api.Group("", requireAuth)
		{
			protected.GET("/date-range", s.handleDateRange)

			tasks := protected.Group("/tasks")
			{
				tasks.GET("", s.handleListTasks)
				tasks.POST("", s.handleCreateTask)
				tasks.GET(":id", s.handleGetTask)
				tasks.PUT(":id", s.handleUpdateTask)
				tasks.DELETE(":id", s.handleDeleteTask)
			}
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic liveness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs err and answers with message, keeping internal detail
// out of the response.
func (s *Server) respondError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "request failed",
			slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": message})
}

// respondSuccess writes payload as JSON, or just the status when there is none.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
