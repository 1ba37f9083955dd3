package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parley/internal/platform/metrics"
	"parley/pkg/platform/httputil"
	"parley/pkg/platform/middleware/metadata"
	"parley/pkg/platform/middleware/requesttime"
	"parley/pkg/requestcontext"
)

const requestTimeout = 30 * time.Second

// HealthCheck is one dependency probed by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter returns the root router carrying the shared middleware chain,
// /health and /metrics. Feature handlers register on it afterwards.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer, checks ...HealthCheck) chi.Router {
	r := chi.NewRouter()
	r.Use(metadata.RequestMetadata)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(accessLog(logger))
	if m != nil {
		r.Use(Latency(m))
	}

	r.Get("/health", healthHandler(checks))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Latency records request duration labelled by the matched route pattern.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			m.ObserveHTTPRequest(r.Method, route, ww.Status(), start)
		})
	}
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			ctx := r.Context()
			logger.InfoContext(ctx, "http request",
				"request_id", requestcontext.RequestID(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		healthy := true
		for _, c := range checks {
			if err := c.Check(r.Context()); err != nil {
				status[c.Name] = err.Error()
				healthy = false
				continue
			}
			status[c.Name] = "ok"
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{
			"healthy": healthy,
			"checks":  status,
		})
	}
}
