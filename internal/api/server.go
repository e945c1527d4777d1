package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/snapboard/pkg/config"
	"github.com/wonny/snapboard/pkg/logger"
)

// writeSlack is the write budget on top of FETCH_TIMEOUT; a cold
// /api/dashboard waits on every table read before it can answer.
const writeSlack = 20 * time.Second

// Server is the dashboard HTTP server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	env        string
}

// New creates the API server. Websocket connections manage their own deadlines
// after the upgrade, so WriteTimeout only bounds plain requests.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      cfg.Source.FetchTimeout + writeSlack,
			IdleTimeout:       60 * time.Second,
		},
		logger: log.WithComponent("api"),
		env:    cfg.Env,
	}
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener. Shutdown makes it return nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.WithFields(map[string]interface{}{
		"addr": ln.Addr().String(),
		"env":  s.env,
	}).Info("Starting API server")

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Hijacked websocket connections are closed by the hub, not here.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
