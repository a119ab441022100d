package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"points-service/internal/auditlog"
	"points-service/internal/logging"
	"points-service/internal/metrics"
)

const apiServiceName = "points-api"

// requestAudit измеряет каждый запрос, пишет структурную запись в лог и
// зеркалирует её в audit sink. /health и /metrics не аудируются.
func requestAudit(logger *logging.Logger, sink auditlog.Sink, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			traceID := uuid.NewString()
			requestLogger := logger.WithTraceID(traceID)
			r = r.WithContext(requestLogger.WithContext(r.Context()))

			body := captureBody(r)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)

			requestLogger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"durationMs", float64(duration.Microseconds())/1000.0,
			)

			if m != nil {
				m.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
				m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
			}

			if sink != nil {
				sink.Log(buildAuditEntry(r, status, duration, body))
			}
		})
	}
}

// captureBody буферизует тело мутирующего запроса (до MaxBodyBytes) и
// восстанавливает r.Body для обработчика.
func captureBody(r *http.Request) string {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return ""
	}
	if r.Body == nil {
		return ""
	}

	// multipart-загрузки не дублируем в аудит
	if mediaType := r.Header.Get("Content-Type"); len(mediaType) >= 9 && mediaType[:9] == "multipart" {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, auditlog.MaxBodyBytes+1))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), r.Body))

	if len(data) > auditlog.MaxBodyBytes {
		data = data[:auditlog.MaxBodyBytes]
	}
	return string(data)
}

func buildAuditEntry(r *http.Request, status int, duration time.Duration, body string) auditlog.Entry {
	entry := auditlog.Entry{
		Timestamp:   time.Now().UTC(),
		Level:       auditlog.LevelInfo,
		Service:     apiServiceName,
		Endpoint:    r.URL.Path,
		Method:      r.Method,
		StatusCode:  int32(status),
		ClientIP:    clientIP(r),
		UserAgent:   r.UserAgent(),
		DurationMs:  float64(duration.Microseconds()) / 1000.0,
		RequestBody: body,
	}
	if status >= http.StatusBadRequest {
		entry.Level = auditlog.LevelError
		entry.ErrorMessage = http.StatusText(status)
	}

	if query := r.URL.Query(); len(query) > 0 {
		params := make(map[string]string, len(query))
		for key := range query {
			params[key] = query.Get(key)
		}
		if encoded, err := json.Marshal(params); err == nil {
			entry.Params = string(encoded)
		}
	}

	return entry
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// routePattern возвращает шаблон chi-маршрута, чтобы метрики не взрывались
// по кардинальности на каждом home id.
func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
