package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/harrylevesque/rentnest/internal/app"
	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/certs"
	"github.com/harrylevesque/rentnest/internal/config"
	"github.com/harrylevesque/rentnest/internal/utils"
)

const certWarnWindow = 14 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.StringP("config", "c", "", "config file (.yaml, .yml, .json or .jsonc)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dataDir := flag.String("data-dir", "", "data directory (overrides config)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	cfg, err := config.LoadWith(*configPath, func(c *config.Config) {
		if *addr != "" {
			c.Addr = *addr
		}
		if *dataDir != "" {
			c.DataDir = *dataDir
		}
		if *logLevel != "" {
			c.LogLevel = *logLevel
		}
	})
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Close()

	w, err := app.NewWire(cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer w.Close()
	if w.KeyCreated {
		logger.Warn("generated a new master key; back it up", "path", cfg.MasterKeyFile)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           w.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	if cfg.TLSEnabled() {
		cm := certs.NewCertManager(cfg.TLSCert, cfg.TLSKey)
		tlsConfig, leaf, err := cm.TLSConfig()
		if err != nil {
			return err
		}
		if cm.ExpiresWithin(leaf, certWarnWindow) {
			logger.Warn("tls certificate expires soon", "not_after", leaf.NotAfter)
		}
		srv.TLSConfig = tlsConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, w.Auth, time.Duration(cfg.SessionSweep))

	serveDone := make(chan error, 1)
	go func() {
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		serveDone <- err
	}()
	logger.Info("server running",
		"addr", cfg.Addr,
		"tls", cfg.TLSEnabled(),
		"data_dir", cfg.DataDir,
		"pii_encryption", cfg.EncryptPII(),
	)

	select {
	case err := <-serveDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweepSessions deletes expired and logged-out sessions until ctx ends.
// Failures are logged by the service and retried on the next tick.
func sweepSessions(ctx context.Context, svc *auth.Service, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = svc.SweepExpired(ctx)
		}
	}
}
