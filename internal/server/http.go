// Package server assembles the gin engine and owns the HTTP listener
// lifecycle.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	healthhandler "nomnom/session-service/internal/health/handler"
	"nomnom/session-service/internal/server/middleware"
	sessionhandler "nomnom/session-service/internal/session/handler"
)

// Deps holds the handlers and middleware dependencies for the HTTP server.
type Deps struct {
	// Sessions serves the session API. Required.
	Sessions *sessionhandler.Handler
	// Auth guards the protected routes. Required.
	Auth middleware.Authorizer
	// Health serves GET /healthz. If nil, /healthz always reports ok.
	Health *healthhandler.Handler
}

// NewRouter builds the engine with the full route table.
//
// Route layout:
//   - GET  /healthz                          liveness and readiness
//   - POST /api/sessions/create              public (login flow)
//   - POST /api/sessions/verify              public (token check for other services)
//   - POST /api/sessions/invalidate/user     bearer token required
//   - POST /api/sessions/invalidate/other    bearer token required
//   - GET  /api/sessions/:userId             bearer token required
//   - GET  /api/sessions/:userId/:sessionId  bearer token required
//   - DELETE /api/sessions/:userId/:sessionId  bearer token required
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Telemetry(map[string]bool{"/healthz": true}))

	if deps.Health != nil {
		r.GET("/healthz", deps.Health.Healthz)
	} else {
		r.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	api := r.Group("/api")
	deps.Sessions.RegisterPublic(api)

	protected := r.Group("/api")
	protected.Use(middleware.RequireAuth(deps.Auth))
	deps.Sessions.RegisterProtected(protected)

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv *http.Server
}

func New(addr string, router *gin.Engine) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until ctx is canceled, then drains in-flight requests for up to
// ten seconds.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	log.Printf("http: listening on %s", s.srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
