package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vadimtrunov/marquee/internal/metrics"
)

// unmatchedRoute labels requests that no route handled, keeping the
// metric cardinality bounded.
const unmatchedRoute = "unmatched"

// statusClientClosed labels requests whose client went away before a
// response was written (nginx's 499).
const statusClientClosed = 499

// instrument records every request in m (when non-nil) and logs it at
// debug level. Routes are labelled by their chi pattern, not the raw path.
func instrument(m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			if m != nil {
				m.TrackInFlight(true)
				defer m.TrackInFlight(false)
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
				if r.Context().Err() != nil {
					status = statusClientClosed
				}
			}
			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			elapsed := time.Since(start)
			if m != nil {
				m.RecordHTTPRequest(r.Method, route, status, elapsed)
			}
			logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Duration("elapsed", elapsed),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
