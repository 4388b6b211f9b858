package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitlife/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

func RequestMetrics(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			begin := time.Now()
			resp := &responseWriter{respWriter, http.StatusOK}

			// handler call
			next.ServeHTTP(resp, req)

			status := strconv.Itoa(resp.statusCode)
			metricsManager.CounterRequests.With(
				prometheus.Labels{
					"method": req.Method,
					"status": status,
				},
			).Inc()
			metricsManager.HistogramRequestDuration.With(
				prometheus.Labels{
					"route":       routeTemplate(req),
					"method":      req.Method,
					"status_code": status,
				},
			).Observe(time.Since(begin).Seconds())
		})
	}
}

// routeTemplate returns the path template of the matched mux route.
func routeTemplate(req *http.Request) string {
	route := mux.CurrentRoute(req)
	if route == nil {
		return "unmatched"
	}
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tmpl
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}
