package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/middleware"
	"github.com/soaringjerry/inform/internal/models"
)

type Credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SignIn exchanges credentials for a session and stores its token. The API
// sends the token in the body, or as the "token" cookie.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*models.User, error) {
	return c.authenticate(ctx, "sign-in", creds)
}

func (c *Client) SignUp(ctx context.Context, creds Credentials) (*models.User, error) {
	return c.authenticate(ctx, "sign-up", creds)
}

func (c *Client) authenticate(ctx context.Context, action string, creds Credentials) (*models.User, error) {
	if err := c.dropExpiredToken(ctx); err != nil {
		return nil, err
	}
	var out authResponse
	resp, err := c.do(ctx, http.MethodPost, c.endpoint("auth", action), creds, &out)
	if err != nil {
		return nil, err
	}
	tok := out.Token
	if tok == "" {
		for _, ck := range resp.Cookies() {
			if ck.Name == "token" {
				tok = ck.Value
			}
		}
	}
	if tok == "" {
		return nil, fmt.Errorf("%s: no session token in response", action)
	}
	if err := c.tokens.Save(tok); err != nil {
		return nil, err
	}
	config.WithContext(ctx).WithField("email", creds.Email).Info("signed in")
	return out.User, nil
}

// dropExpiredToken clears a stored token that has already expired, so it is
// not reported as an expired session while signing in again.
func (c *Client) dropExpiredToken(ctx context.Context) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if tok == "" || !middleware.TokenExpired(tok, time.Now()) {
		return nil
	}
	config.WithContext(ctx).Debug("discarding expired session token")
	return c.tokens.Clear()
}

// SignOut ends the session. The local token is cleared even if the API call fails.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, c.endpoint("auth", "sign-out"), nil, nil)
	if cerr := c.tokens.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("user", "me"), nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &HTTPError{Status: http.StatusUnauthorized, Message: "not signed in"}
	}
	return out.User, nil
}
