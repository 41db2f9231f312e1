package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/soaringjerry/inform/internal/config"
)

// TokenExpiredMessage is the API's 401 body message for a stale session.
const TokenExpiredMessage = "Token expired"

// ErrSessionExpired is returned instead of sending a request with a stale token.
var ErrSessionExpired = errors.New("session expired, please sign in again")

// TokenSource yields the current session token; "" means signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SessionHandler is told when the session can no longer be used.
type SessionHandler interface {
	OnSessionExpired(ctx context.Context)
}

type SessionHandlerFunc func(ctx context.Context)

func (f SessionHandlerFunc) OnSessionExpired(ctx context.Context) { f(ctx) }

// Claims are the fields read from the API's session token.
type Claims struct {
	UID   string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseClaims decodes a token without verifying its signature; the client
// has no key and only needs the expiry.
func ParseClaims(tok string) (*Claims, error) {
	c := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, c); err != nil {
		return nil, err
	}
	return c, nil
}

// TokenExpired reports whether tok carries an expiry at or before now.
// Tokens that are not JWTs, or have no exp claim, never count as expired.
func TokenExpired(tok string, now time.Time) bool {
	c, err := ParseClaims(tok)
	if err != nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// WithAuth attaches the session token as a bearer header and cookie. An expired
// token, or a 401 "Token expired" answer, is reported to h.
func WithAuth(src TokenSource, h SessionHandler) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()
			tok, err := src.Token(ctx)
			if err != nil {
				return nil, err
			}
			if tok != "" {
				if TokenExpired(tok, time.Now()) {
					expire(ctx, h)
					return nil, ErrSessionExpired
				}
				r = cloneRequest(r)
				r.Header.Set("Authorization", "Bearer "+tok)
				r.AddCookie(&http.Cookie{Name: "token", Value: tok})
			}
			resp, err := next.RoundTrip(r)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			if isTokenExpired(resp) {
				expire(ctx, h)
			}
			return resp, nil
		})
	}
}

func expire(ctx context.Context, h SessionHandler) {
	config.WithContext(ctx).Warn("session expired")
	if h != nil {
		h.OnSessionExpired(ctx)
	}
}

// isTokenExpired peeks at the body and restores it for the caller.
func isTokenExpired(resp *http.Response) bool {
	if resp.Body == nil {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return false
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return false
	}
	return payload.Message == TokenExpiredMessage
}
