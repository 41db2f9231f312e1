package middleware

import "net/http"

// WithUserAgent identifies the client on every request.
func WithUserAgent(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = cloneRequest(r)
			r.Header.Set("User-Agent", ua)
			return next.RoundTrip(r)
		})
	}
}

// WithNoCache asks intermediaries not to serve stale form data.
func WithNoCache(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		r = cloneRequest(r)
		r.Header.Set("Cache-Control", "no-cache")
		r.Header.Set("Pragma", "no-cache")
		return next.RoundTrip(r)
	})
}
