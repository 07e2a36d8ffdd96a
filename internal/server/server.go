// Package server is the HTTP request boundary in front of the response graph.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fredgpt/server/internal/agent/graph"
	"github.com/fredgpt/server/internal/core"
	"github.com/fredgpt/server/internal/metrics"
	logx "github.com/fredgpt/server/pkg/logger"
)

const (
	HealthMessage = "Economic assistant backend is running"
	HealthStatus  = "healthy"

	shutdownTimeout = 10 * time.Second
)

type Options struct {
	Addr           string
	AllowedOrigins []string
	Environment    core.Environment
	// Metrics is optional; /metrics is only mounted when set.
	Metrics *metrics.Collector
}

type Server struct {
	runner  graph.Runner
	opts    Options
	handler *gin.Engine
}

func New(runner graph.Runner, opts Options) *Server {
	if opts.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{runner: runner, opts: opts}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(), cors(s.opts.AllowedOrigins))

	r.GET("/", s.health)
	r.POST("/ask", s.ask)
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}
	return r
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.opts.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
