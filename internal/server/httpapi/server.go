// Package httpapi exposes the session and video services over HTTP.
//
// Routes live under /api/v1. Token transport is cookie-first (HttpOnly
// accessToken / refreshToken cookies) with an Authorization: Bearer
// fallback for non-browser clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viewtube/viewtube/internal/logging"
	"github.com/viewtube/viewtube/internal/server/config"
	"github.com/viewtube/viewtube/internal/server/services"
)

type Server struct {
	address  string
	sessions *services.SessionService
	videos   *services.VideoService
	logger   logging.Logger
	cfg      *config.Config
	spoolDir string
}

func NewServer(cfg *config.Config, l logging.Logger, ss *services.SessionService, vs *services.VideoService, spoolDir string) *Server {
	return &Server{
		address:  cfg.EndpointAddrHTTP,
		sessions: ss,
		videos:   vs,
		logger:   l.With("module", "http_server"),
		cfg:      cfg,
		spoolDir: spoolDir,
	}
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", s.handleRegister)
	users.POST("/login", s.handleLogin)
	users.POST("/refresh-token", s.handleRefresh)

	authed := api.Group("")
	authed.Use(s.requireAuth())
	{
		authed.POST("/users/logout", s.handleLogout)
		authed.POST("/users/change-password", s.handleChangePassword)
		authed.GET("/users/me", s.handleCurrentUser)
		authed.GET("/users/history", s.handleWatchHistory)
		authed.POST("/videos", s.handlePublishVideo)
	}

	// watching works anonymously; a valid token just attributes the view
	api.GET("/videos/:id", s.optionalAuth(), s.handleWatchVideo)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
