package middleware

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Satyam216/todo-collab/internal/metrics"
)

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Hijack keeps websocket upgrades working through the wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

// Metrics returns middleware that records Prometheus metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(wrapped.status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// normalizePath collapses room and task ids so metric cardinality stays
// bounded.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/rooms/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/rooms/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		return "/rooms/:id"
	case parts[1] == "tasks" && len(parts) == 2:
		return "/rooms/:id/tasks"
	case parts[1] == "tasks" && len(parts) >= 4 && parts[3] == "completed":
		return "/rooms/:id/tasks/:taskID/completed"
	case parts[1] == "tasks":
		return "/rooms/:id/tasks/:taskID"
	case parts[1] == "ws":
		return "/rooms/:id/ws"
	}
	return path
}
