package httpserver

import (
	"log/slog"
	"net/http"

	"deepcheck/internal/config"
	"deepcheck/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Logger         *slog.Logger
	Predict        http.Handler
	Health         http.Handler
	Metrics        http.Handler // nil отключает /metrics
	RequestMetrics middleware.RequestObserver
	RateLimit      config.RateLimitConfig
}

// NewRouter собирает chi-роутер с общими middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Logging(deps.Logger, deps.RequestMetrics))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Get("/healthz", deps.Health.ServeHTTP)
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.ServeHTTP)
	}

	r.With(middleware.RateLimit(deps.RateLimit.RPS, deps.RateLimit.Burst)).
		Post("/predict", deps.Predict.ServeHTTP)

	return r
}
