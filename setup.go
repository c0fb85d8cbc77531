package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kova98/saletracker/api"
	"github.com/kova98/saletracker/config"
)

// The form owns the terminal, so interactive runs log to a file.
const defaultInteractiveLogFile = "saletracker.log"

// newLogger builds the logger and makes it the default. Logs go to path, or
// fallback when path is empty, or stderr when both are empty.
func newLogger(path, fallback string) (*slog.Logger, func(), error) {
	if path == "" {
		path = fallback
	}

	out := os.Stderr
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	logger := slog.New(newHandler(out))
	slog.SetDefault(logger)

	return logger, closeFn, nil
}

// newHandler writes JSON at the configured level in production and readable
// text at debug level everywhere else.
func newHandler(w io.Writer) slog.Handler {
	if !config.Config.IsProduction() {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: config.Config.LogLevel})
}

func newAPIClient(logger *slog.Logger) (*api.Client, error) {
	client, err := api.NewHTTPClient(config.Config.ProxyURL, config.Config.RequestTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "create http client")
	}

	var tokens api.TokenSource
	switch {
	case config.Config.KeycloakEnabled():
		keycloakClient := gocloak.NewClient(config.Config.KeycloakURL)
		tokens = api.NewKeycloakTokens(
			keycloakClient,
			config.Config.KeycloakClientID,
			config.Config.KeycloakClientSecret,
			config.Config.KeycloakRealm,
		)
		logger.Debug("using keycloak client credentials", "realm", config.Config.KeycloakRealm)
	case config.Config.APIToken != "":
		tokens = api.StaticToken(config.Config.APIToken)
	}

	return api.NewClient(logger, client, config.Config.APIBaseURL, tokens), nil
}

// startMetrics serves /metrics on METRICS_ADDR until ctx is done.
func startMetrics(ctx context.Context, logger *slog.Logger, reg *prometheus.Registry) {
	if config.Config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: config.Config.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to serve metrics", "error", err)
		}
	}()
}
