// Package server runs the HTTP service with signal-driven graceful shutdown
// and configuration reload.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-botgraph/pkg/logging"
)

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// Options holds the server timeouts. Zero values select the defaults.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 15 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 60 * time.Second
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 120 * time.Second
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return o
}

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server       *http.Server
	opts         Options
	logger       logging.Logger
	ready        chan struct{}
	addr         net.Addr
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	configReloadFn ConfigReloadFunc
	configMu       sync.RWMutex
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, opts Options, logger logging.Logger) *GracefulServer {
	opts = opts.withDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			MaxHeaderBytes:    1 << 20,
		},
		opts:       opts,
		logger:     logger.With(logging.Component("server")),
		ready:      make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives or Shutdown
// is called, then drains connections. SIGHUP triggers ReloadConfig.
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.server.Serve(ln) }()

	gs.addr = ln.Addr()
	close(gs.ready)
	gs.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			return gs.Shutdown(gs.opts.ShutdownTimeout)
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				gs.logger.Info("Received SIGHUP, reloading configuration")
				gs.ReloadConfig()
				continue
			}
			gs.logger.Info("Received signal, starting graceful shutdown", logging.String("signal", sig.String()))
			return gs.Shutdown(gs.opts.ShutdownTimeout)
		}
	}
}

// Ready is closed once the listener is bound.
func (gs *GracefulServer) Ready() <-chan struct{} {
	return gs.ready
}

// Addr returns the bound listener address. It is nil before Ready closes.
func (gs *GracefulServer) Addr() net.Addr {
	select {
	case <-gs.ready:
		return gs.addr
	default:
		return nil
	}
}

// Shutdown initiates a graceful shutdown
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("Initiating graceful shutdown", logging.Duration("timeout", timeout))
		if err = gs.server.Shutdown(ctx); err != nil {
			gs.logger.Error("Error during shutdown", logging.Error(err))
		} else {
			gs.logger.Info("Server shutdown complete")
		}
	})
	return err
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("Configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("Configuration reload failed", logging.Error(err))
		return err
	}
	gs.logger.Info("Configuration reload complete")
	return nil
}
