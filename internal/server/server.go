// Package server serves the Program Flow report over HTTP for clients that
// cannot render PDFs themselves.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/javiermolinar/spotgrid/internal/report"
)

// defaultBindAddress keeps the server on loopback unless told otherwise.
const defaultBindAddress = "127.0.0.1:8080"

// defaultShutdownTimeout bounds graceful shutdown once the context is done.
const defaultShutdownTimeout = 5 * time.Second

// Logger receives server events.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// Config defines serve-mode settings.
type Config struct {
	Bind string

	// LogoPath is the logo used when a request names none.
	LogoPath string

	// LogoDir holds the logos a request may name. It defaults to the
	// directory of LogoPath.
	LogoDir string
	Version string
}

// NewHandler builds the root mux with health and report endpoints.
func NewHandler(cfg Config, generator report.Generator, logger Logger) (http.Handler, Config) {
	cfg = normalizeConfig(cfg)
	api := &Handler{generator: generator, defaultLogo: cfg.LogoPath, logoDir: cfg.LogoDir, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", writeHealthStatus)
	mux.HandleFunc("/readyz", writeHealthStatus)
	mux.HandleFunc(report.StatusPath, api.handleStatus)
	mux.HandleFunc(report.ProgramFlowPath, api.handleProgramFlow)
	return logRequests(logger, mux), cfg
}

// Run starts the server and blocks until ctx is cancelled or serving fails.
func Run(ctx context.Context, cfg Config, generator report.Generator, logger Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg := NewHandler(cfg, generator, logger)
	ln, err := net.Listen("tcp", cfg.Bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Bind, err)
	}
	return Serve(ctx, ln, handler, logger)
}

// Serve serves handler on ln until ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if logger != nil {
		logger.Info("report server listening", "addr", ln.Addr().String())
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		shutdownErr := httpServer.Shutdown(shutdownCtx)
		serveErr := <-serveErrCh
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
			return fmt.Errorf("shutdown server: %w", shutdownErr)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve after shutdown: %w", serveErr)
		}
		if logger != nil {
			logger.Info("report server stopped")
		}
		return nil
	}
}

func normalizeConfig(cfg Config) Config {
	cfg.Bind = strings.TrimSpace(cfg.Bind)
	if cfg.Bind == "" {
		cfg.Bind = defaultBindAddress
	}
	cfg.LogoPath = strings.TrimSpace(cfg.LogoPath)
	cfg.LogoDir = strings.TrimSpace(cfg.LogoDir)
	if cfg.LogoDir == "" && cfg.LogoPath != "" {
		cfg.LogoDir = filepath.Dir(cfg.LogoPath)
	}
	cfg.Version = strings.TrimSpace(cfg.Version)
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return cfg
}

// writeHealthStatus responds with a fixed readiness payload.
func writeHealthStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
