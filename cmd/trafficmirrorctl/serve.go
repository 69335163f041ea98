package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	interceptor "github.com/plt-oss/traffic-interceptor"
	"github.com/plt-oss/traffic-interceptor/internal/config"
	"github.com/plt-oss/traffic-interceptor/internal/logging"
	"github.com/plt-oss/traffic-interceptor/internal/middleware"
)

var serveDemoCmd = &cobra.Command{
	Use:   "serve-demo",
	Short: "Run a demo reverse proxy with the interceptor wired into its transport",
	RunE:  runServeDemo,
}

func init() {
	rootCmd.AddCommand(serveDemoCmd)
}

func runServeDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid upstream_url %q: %w", cfg.UpstreamURL, err)
	}

	opts := cfg.ToOptions()
	opts.Logger = zapLogger.With(zap.String(logging.FieldComponent, logging.ComponentInterceptor))

	i, err := interceptor.New(opts)
	if err != nil {
		return fmt.Errorf("failed to construct interceptor: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.Transport = i.Transport(http.DefaultTransport)

	handler := middleware.NewRequestIDMiddleware()(proxy)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("serve-demo listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("upstream", cfg.UpstreamURL),
			zap.String("inspector", cfg.TrafficInspector.URL))
		errCh <- srv.ListenAndServe()
	}()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println("Press Ctrl+C to stop")
	}

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case <-done:
		zapLogger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	stats := i.Stats()
	zapLogger.Info("final stats",
		zap.Int64("admitted", stats.Admitted),
		zap.Int64("dropped", stats.Dropped),
		zap.Int64("mirrored_body", stats.MirroredBody),
		zap.Int64("mirrored_meta_only", stats.MirroredMetaOnly),
		zap.Int64("mirror_errors", stats.MirrorErrors))
	return nil
}
