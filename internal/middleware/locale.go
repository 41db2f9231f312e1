package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/inform/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// WithLocale sends Accept-Language, preferring a locale stored in the request
// context over def.
func WithLocale(def string) Middleware {
	def = utils.DetermineLocale(def, "", utils.SupportedLocales, "en")
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			locale := def
			if v, ok := r.Context().Value(localeKey).(string); ok && v != "" {
				locale = v
			}
			r = cloneRequest(r)
			r.Header.Set("Accept-Language", locale)
			return next.RoundTrip(r)
		})
	}
}

// ContextWithLocale overrides the locale for requests made with ctx.
func ContextWithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, localeKey, utils.DetermineLocale(lang, "", utils.SupportedLocales, "en"))
}

// LocaleFromContext retrieves the locale stored by ContextWithLocale.
func LocaleFromContext(ctx context.Context) string {
	if v := ctx.Value(localeKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "en"
}
