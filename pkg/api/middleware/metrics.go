package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// UnmatchedRoute labels requests no mux pattern matched, keeping label
// cardinality bounded.
const UnmatchedRoute = "unmatched"

// MetricsRecorder is an interface for recording HTTP metrics
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	RecordResponseSize(method, path string, size float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()
}

// Metrics creates middleware that tracks HTTP request metrics, labelled by
// the ServeMux pattern that handled the request.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder.IncHTTPRequestsInFlight()
			defer recorder.DecHTTPRequestsInFlight()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			route := r.Pattern
			if route == "" {
				route = UnmatchedRoute
			}
			recorder.RecordHTTPRequest(r.Method, route, strconv.Itoa(sw.statusCode), time.Since(start))
			recorder.RecordResponseSize(r.Method, route, float64(sw.bytesWritten))
		})
	}
}
