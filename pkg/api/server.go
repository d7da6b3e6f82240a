// Package api is the HTTP front of the council service: authentication,
// rate limiting, conversation CRUD, workflow introspection, and the SSE
// execution stream.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/ratelimit"
	"github.com/codeready-toolchain/council/pkg/store"
	"github.com/codeready-toolchain/council/pkg/version"
	"github.com/codeready-toolchain/council/pkg/workflow"
)

// Server carries the wired dependencies behind the HTTP handlers.
type Server struct {
	cfg       *config.Config
	store     store.Store
	registry  *workflow.Registry
	workflows *workflow.Service
	limiter   *ratelimit.Limiter

	router     *gin.Engine
	httpServer *http.Server
}

// NewServer assembles the gin engine, middleware chain, and routes.
func NewServer(cfg *config.Config, st store.Store, registry *workflow.Registry, workflows *workflow.Service, limiter *ratelimit.Limiter) *Server {
	s := &Server{
		cfg:       cfg,
		store:     st,
		registry:  registry,
		workflows: workflows,
		limiter:   limiter,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	s.router = r
	s.registerRoutes(r)
	return s
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       s.cfg.HTTPKeepAliveTimeout,
	}

	if s.cfg.MaxConnections > 0 {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		return s.httpServer.Serve(newLimitListener(ln, s.cfg.MaxConnections))
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /. Unauthenticated; safe for probes.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &HealthResponse{
		Status:  "ok",
		Service: "LLM Council API",
		Version: version.GitCommit,
	})
}

// limitListener caps concurrent accepted connections; Accept blocks while
// the cap is reached.
type limitListener struct {
	net.Listener
	sem *semaphore.Weighted
}

func newLimitListener(ln net.Listener, max int) *limitListener {
	return &limitListener{Listener: ln, sem: semaphore.NewWeighted(int64(max))}
}

func (l *limitListener) Accept() (net.Conn, error) {
	if err := l.sem.Acquire(context.Background(), 1); err != nil {
		return nil, err
	}
	conn, err := l.Listener.Accept()
	if err != nil {
		l.sem.Release(1)
		return nil, err
	}
	return &limitConn{Conn: conn, release: func() { l.sem.Release(1) }}, nil
}

// limitConn releases its slot exactly once, however many times Close runs.
type limitConn struct {
	net.Conn
	once    sync.Once
	release func()
}

func (c *limitConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.release)
	return err
}
