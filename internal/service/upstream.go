package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/techskill-console/internal/backend"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

// upstreamError converts a backend client error into the console's error
// taxonomy. message describes the failed operation and replaces the
// generic text for transport and server failures.
func upstreamError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, message)
	}
	if backend.IsUnreachable(err) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, message)
	}
	if errors.Is(err, backend.ErrMalformed) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamMalformed.Code, appErrors.ErrUpstreamMalformed.Status, message)
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return appErrors.Wrap(err, appErrors.ErrSessionExpired.Code, appErrors.ErrSessionExpired.Status, appErrors.ErrSessionExpired.Message)
		case apiErr.Status >= http.StatusInternalServerError:
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
		default:
			return appErrors.Wrap(err, clientErrorCode(apiErr.Status), apiErr.Status, apiErr.Detail)
		}
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func clientErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.ErrValidation.Code
	case http.StatusForbidden:
		return appErrors.ErrForbidden.Code
	case http.StatusNotFound:
		return appErrors.ErrNotFound.Code
	case http.StatusConflict:
		return appErrors.ErrConflict.Code
	default:
		return "UPSTREAM_REJECTED"
	}
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func requireSession(s *backend.Session) error {
	if s == nil || s.Token == "" {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// backendStatus returns the HTTP status of a backend rejection, or 0.
func backendStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
