// Package server exposes effect files and performance sessions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/storage"
)

// Server wires the store into gin routes.
type Server struct {
	store    storage.Store
	registry *effect.Registry
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry makes uploaded Lua scripts runnable by registering them.
func WithRegistry(r *effect.Registry) Option {
	return func(s *Server) { s.registry = r }
}

// New builds the route table.
func New(store storage.Store, opts ...Option) *Server {
	s := &Server{store: store}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = config.MaxUploadBytes

	api := r.Group("/api")
	api.GET("/effects", s.listEffects)
	api.GET("/effects/:id", s.getEffect)
	api.POST("/effects", s.uploadEffect)
	api.DELETE("/effects/:id", s.deleteEffect)
	api.GET("/effects/:id/performance-sessions", s.listSessions)
	api.POST("/performance-sessions", s.createSession)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("[server] stopped")
	return nil
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
