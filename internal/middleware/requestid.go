package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/inform/internal/config"
)

const RequestIDHeader = "X-Request-ID"

// WithRequestID tags each request with an id, reusing one already in the context.
func WithRequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		id := config.RequestIDFromContext(r.Context())
		if id == "" {
			id = uuid.NewString()
		}
		ctx := config.WithRequestID(r.Context(), id)
		r = r.Clone(ctx)
		r.Header.Set(RequestIDHeader, id)
		return next.RoundTrip(r)
	})
}

// WithLogging logs each exchange at debug level and failures at warn.
func WithLogging(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		entry := config.WithContext(r.Context()).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("duration", time.Since(start).Round(time.Millisecond))
		switch {
		case err != nil:
			entry.WithError(err).Warn("request failed")
		case resp.StatusCode >= 500:
			entry.WithField("status", resp.StatusCode).Warn("server error")
		default:
			entry.WithField("status", resp.StatusCode).Debug("request done")
		}
		return resp, err
	})
}
