// Package server runs the storefront HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
)

// Server serves the storefront routes for one container.
type Server struct {
	httpServer *http.Server
	container  *container.Container

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// New builds the server. addr is a host:port; a bare port is accepted too.
func New(addr string, c *container.Container) *Server {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = ":" + addr
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      routes.SetupRoutes(c),
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		container: c,
		ready:     make(chan struct{}),
	}
}

// Start listens and serves until Stop. It returns nil after a clean stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.container.Logger.System().Info("HTTP server listening", "address", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Addr blocks until Start has bound its listener and returns the bound
// address, which differs from the configured one when the port is 0.
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener.Addr().String(), nil
}

// Stop ends the realtime feed first so websocket and SSE handlers return,
// then drains the remaining requests.
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("Closing realtime subscribers",
		"subscribers", s.container.Feed.SubscriberCount())
	s.container.Close()

	s.container.Logger.Shutdown().Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
