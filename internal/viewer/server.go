// Package viewer serves a finished size report over HTTP.
//
// The viewer is read-only. It renders the report page at /size, returns the
// report JSON at /api/sizeReportInfo, and exposes stored runs, health and
// Prometheus metrics.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/browser"

	"sizereport/internal/logging"
	"sizereport/internal/storage"
)

// ReportStore is the subset of the run store the viewer reads.
type ReportStore interface {
	Get(ctx context.Context, id string) (*storage.ReportRun, error)
	Latest(ctx context.Context) (*storage.ReportRun, error)
	List(ctx context.Context, limit int) ([]*storage.ReportRun, error)
}

// Options configures a viewer server.
type Options struct {
	Host            string
	Port            int
	ReportPath      string
	Store           ReportStore
	AutoOpenBrowser bool
	// RetryDelay is the wait before falling back to an ephemeral port.
	RetryDelay time.Duration
}

// openURL is replaced in tests.
var openURL = browser.OpenURL

// Server represents the viewer HTTP server
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	opts    Options
	logger  *logging.Logger
	reports *reportLoader
	metrics *Metrics

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new viewer instance
func NewServer(opts Options, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}

	s := &Server{
		opts:    opts,
		logger:  logger,
		router:  http.NewServeMux(),
		metrics: NewMetrics(),
	}
	s.reports = &reportLoader{path: opts.ReportPath, store: opts.Store, metrics: s.metrics}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Listen binds the configured address. When that fails the server waits
// RetryDelay and binds an ephemeral port on the same host instead.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.logger.Warn("Viewer port unavailable, retrying on a random port", map[string]interface{}{
			"addr":  addr,
			"error": err.Error(),
		})
		time.Sleep(s.opts.RetryDelay)
		ln, err = net.Listen("tcp", net.JoinHostPort(s.opts.Host, "0"))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// URL returns the report page address once listening.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String() + "/size"
}

// Run listens, optionally opens the browser, and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	url := s.URL()
	s.logger.Info("Size report viewer started", map[string]interface{}{
		"url": url,
	})
	if s.opts.AutoOpenBrowser {
		if err := openURL(url); err != nil {
			s.logger.Warn("Failed to open browser", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down viewer", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = MetricsMiddleware(s.metrics)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}
