package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/2beens/fitlife/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

type headerTrackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerTrackingWriter) WriteHeader(statusCode int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *headerTrackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// PanicRecovery turns a handler panic into a 500, unless the handler already
// started the response. http.ErrAbortHandler is re-raised for net/http.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			tw := &headerTrackingWriter{ResponseWriter: w}
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}

				log.WithFields(log.Fields{
					"method": req.Method,
					"route":  routeTemplate(req),
				}).Errorf("http: panic serving %s: %v\n%s", req.URL.Path, r, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				if !tw.wroteHeader {
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(tw, req)
		})
	}
}
