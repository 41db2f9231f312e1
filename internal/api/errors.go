package api

import (
	"errors"
	"net/http"

	"github.com/soaringjerry/inform/internal/middleware"
	"github.com/soaringjerry/inform/internal/services"
)

// toServiceError maps transport failures onto service error codes so callers
// can branch on services.AsServiceError without knowing about HTTP.
func toServiceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, middleware.ErrSessionExpired) {
		return &services.ServiceError{Code: services.ErrorUnauthorized, Message: err.Error(), Err: services.ErrTokenExpired}
	}
	var herr *HTTPError
	if !errors.As(err, &herr) {
		return err
	}
	var code services.ErrorCode
	switch herr.Status {
	case http.StatusNotFound:
		code = services.ErrorNotFound
	case http.StatusForbidden:
		code = services.ErrorForbidden
	case http.StatusUnauthorized:
		code = services.ErrorUnauthorized
	case http.StatusConflict:
		code = services.ErrorConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = services.ErrorInvalid
	default:
		return err
	}
	se := &services.ServiceError{Code: code, Message: herr.Message, Err: herr}
	if herr.Status == http.StatusUnauthorized && herr.Message == middleware.TokenExpiredMessage {
		se.Err = services.ErrTokenExpired
	}
	return se
}
