// metrics.go — HTTP middleware для сбора Prometheus-метрик ADL Module.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal — счётчик HTTP-запросов по методу, пути и статусу.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adl_http_requests_total",
			Help: "Количество HTTP-запросов к ADL Module.",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adl_http_request_duration_seconds",
			Help:    "Длительность обработки HTTP-запросов в секундах.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware собирает метрики по каждому HTTP-запросу.
// Пути нормализуются, чтобы не раздувать кардинальность метрик.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		mw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(mw, r)

		path := normalizePath(r.URL.Path)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(mw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// metricsResponseWriter перехватывает статус-код ответа.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap для поддержки http.ResponseController.
func (w *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// normalizePath заменяет переменные части пути на плейсхолдеры.
// Кардинальность лейбла path должна оставаться ограниченной.
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/adl-files",
		"/api/v1/reports/active-files",
		"/api/v1/reports/files-to-retrieve",
		"/api/v1/reports/overdue-retrievals",
		"/api/v1/reports/status-histogram":
		return path
	}

	if rest, ok := strings.CutPrefix(path, "/api/v1/adl-files/number/"); ok && rest != "" {
		return "/api/v1/adl-files/number/{file_number}"
	}

	if rest, ok := strings.CutPrefix(path, "/api/v1/adl-files/"); ok && rest != "" {
		// /api/v1/adl-files/{id}[/movements|/replay|/transitions]
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/api/v1/adl-files/{id}" + rest[idx:]
		}
		return "/api/v1/adl-files/{id}"
	}

	return path
}
