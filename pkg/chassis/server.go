// Package chassis runs the HTTP surface of the service over plain TCP or TLS.
// Every response gets security headers and panic recovery; the server shuts
// down gracefully when its context ends.
//
// TLS is off by default. "dev" generates a self-signed ECDSA P-256 cert at
// startup; "files" loads cert_file and key_file.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const defaultShutdownTimeout = 10 * time.Second

// Config holds configuration for the chassis server.
type Config struct {
	Addr            string
	Handler         http.Handler
	TLSMode         string // off, dev, files
	CertFile        string
	KeyFile         string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server wraps an http.Server with the chassis defaults.
type Server struct {
	addr    string
	logger  *slog.Logger
	tlsCfg  *tls.Config
	http    *http.Server
	timeout time.Duration
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("chassis: nil handler")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	tlsCfg, err := TLSConfig(cfg.TLSMode, cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	if cfg.TLSMode == TLSDev {
		cfg.Logger.Warn("TLS: self-signed dev cert generated, not for production")
	}

	return &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		timeout: cfg.ShutdownTimeout,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           stack(cfg.Handler),
			TLSConfig:         tlsCfg,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelWarn),
		},
	}, nil
}

// stack wraps h with the middleware every listener gets. Only JSON and CSV
// bodies are compressed; /metrics negotiates its own encoding.
func stack(h http.Handler) http.Handler {
	h = middleware.Compress(5, "application/json", "text/csv")(h)
	h = middleware.Recoverer(h)
	h = middleware.RealIP(h)
	return securityHeaders(h)
}

// securityHeaders adds standard security headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
// It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	proto := "http"
	if s.tlsCfg != nil {
		ln = tls.NewListener(ln, s.tlsCfg)
		proto = "https"
	}
	s.logger.Info("coo listening", "addr", ln.Addr().String(), "proto", proto)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
