// Package trace stamps every dashboard request with an id and logs its
// outcome.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	applog "expensetracker/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

type Middleware struct {
	logger    *applog.Logger
	extractIP func(*http.Request) string
	metrics   *Metrics
}

// Metrics counts requests. AverageResponseTime is a running mean in
// microseconds.
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64
}

func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Middleware{
		logger:    logger.WithComponent(applog.ComponentHTTP),
		extractIP: extractIP,
		metrics:   &Metrics{},
	}
}

// Middleware also stores a request-scoped logger in the context, read back
// with applog.FromContext.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		reqLogger := m.logger.With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		fields := applog.NewFields().
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"))
		reqLogger.DebugContext(ctx, "HTTP request started", fields.ToSlice()...)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		n := atomic.AddInt64(&m.metrics.TotalRequests, 1)
		prev := atomic.LoadInt64(&m.metrics.AverageResponseTime)
		atomic.StoreInt64(&m.metrics.AverageResponseTime, prev+(duration.Microseconds()-prev)/n)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		fields = fields.WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < 400)
		reqLogger.Log(ctx, level, "HTTP request completed",
			append([]any{applog.FieldComponent, reqLogger.Component()}, fields.ToSlice()...)...)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       atomic.LoadInt64(&m.metrics.TotalRequests),
		AverageResponseTime: atomic.LoadInt64(&m.metrics.AverageResponseTime),
	}
}
