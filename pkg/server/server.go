// Package server assembles the gin HTTP surface over the query service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txlens/txlens/pkg/config"
	"github.com/txlens/txlens/pkg/server/handlers"
	"github.com/txlens/txlens/pkg/service"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	config *config.Config
	engine *gin.Engine
	http   *http.Server
	svc    *service.Service
	logger *slog.Logger
}

// New creates a server for the given service.
func New(cfg *config.Config, svc *service.Service, logger *slog.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)

	return &Server{
		config: cfg,
		engine: gin.New(),
		svc:    svc,
		logger: logger,
	}
}

// Setup registers middleware and routes.
func (s *Server) Setup() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestID())
	s.engine.Use(s.requestLogger())

	query := handlers.NewQueryHandler(s.svc, s.logger)
	health := handlers.NewHealthHandler(s.svc)

	s.engine.GET("/health", health.HealthCheck)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/query", query.Ask)
		v1.POST("/graphql", query.Execute)
		v1.POST("/validate", query.Validate)
	}
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down, draining in-flight requests until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}
