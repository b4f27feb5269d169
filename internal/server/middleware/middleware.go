// Package middleware provides HTTP middleware for request tracing, access
// logging, metrics and panic recovery.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied ids.
const maxRequestIDLength = 128

// RequestID reuses a client-supplied X-Request-ID or generates one, stores it
// in the request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = logging.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logging.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLog logs every finished request and records API metrics labelled
// by the matched chi route pattern. It also installs the log entry that
// chimiddleware.Recoverer reports panics to, so it must run before it.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = chimiddleware.WithLogEntry(r, panicLog{r: r})

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := RoutePattern(r)
		duration := time.Since(start)
		metrics.RecordAPIRequest(r.Method, route, status, duration)

		event := logging.Ctx(r.Context()).Info()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Str("remote", r.RemoteAddr).
			Msg("request completed")
	})
}

// panicLog is the chi log entry consulted by chimiddleware.Recoverer. Only
// panics are logged here; finished requests are logged by AccessLog.
type panicLog struct {
	r *http.Request
}

func (panicLog) Write(int, int, http.Header, time.Duration, interface{}) {}

func (e panicLog) Panic(v interface{}, stack []byte) {
	logging.Ctx(e.r.Context()).Error().
		Interface("panic", v).
		Bytes("stack", stack).
		Str("method", e.r.Method).
		Str("path", e.r.URL.Path).
		Msg("handler panicked")
}

// RoutePattern returns the chi route pattern for r, or "unmatched". Raw
// paths are never used as metric labels.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
