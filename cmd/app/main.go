package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deepcheck/internal/config"
	"deepcheck/internal/endpoint"
	"deepcheck/internal/httpserver"
	"deepcheck/internal/metrics"
	"deepcheck/internal/proxy"
	"deepcheck/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	httpClient := transport.NewHTTPClient(cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Недоступный upstream не мешает старту: каждый запрос получит ConnectionError.
	logger.Info("connecting to upstream", slog.String("endpoint", cfg.Endpoint.Address))
	handle := endpoint.Connect(ctx, cfg.Endpoint.Address,
		endpoint.NewGradioDialer(httpClient, cfg.Endpoint.APIName),
		endpoint.Options{
			CallTimeout:    cfg.Endpoint.CallTimeout,
			ConnectTimeout: cfg.Endpoint.ConnectTimeout,
		})
	if err := handle.Err(); err != nil {
		logger.Error("upstream not connected", slog.String("error", err.Error()))
	} else {
		logger.Info("upstream connected", slog.String("endpoint", handle.Address()))
	}

	m := metrics.New()
	m.SetConnected(handle.State().IsConnected())

	invoker := proxy.NewInvoker(proxy.Config{
		Handle:   handle,
		Logger:   logger,
		Observer: m,
	})

	deps := httpserver.RouterDeps{
		Logger:    logger,
		Predict:   httpserver.NewPredictHandler(invoker, logger),
		Health:    httpserver.HealthHandler(handle),
		RateLimit: cfg.RateLimit,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = m.Handler()
		deps.RequestMetrics = m
	}
	router := httpserver.NewRouter(deps)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// writeTimeout оставляет запас сверх таймаута вызова, чтобы клиент получил TimeoutError.
func writeTimeout(cfg config.Config) time.Duration {
	limit := cfg.Endpoint.CallTimeout
	if limit == 0 || (cfg.RequestTimeout > 0 && cfg.RequestTimeout < limit) {
		limit = cfg.RequestTimeout
	}
	if limit == 0 {
		return 0
	}
	return limit + 5*time.Second
}

func newLogger(level string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
