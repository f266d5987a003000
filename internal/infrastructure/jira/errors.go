package jira

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSite is returned when no Jira site is configured.
	ErrMissingSite = errors.New("jira site is not configured")
	// ErrMissingCredentials is returned when neither an API token nor an
	// OAuth token is configured.
	ErrMissingCredentials = errors.New("jira credentials are not configured")
	// ErrUnauthorized maps HTTP 401.
	ErrUnauthorized = errors.New("jira rejected the credentials")
	// ErrForbidden maps HTTP 403.
	ErrForbidden = errors.New("jira denied access")
	// ErrNotFound maps HTTP 404.
	ErrNotFound = errors.New("jira resource not found")
)

// APIError is a non-2xx response from Jira.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("jira returned status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("jira returned status %d for %s: %s", e.StatusCode, e.URL, body)
}

// Unwrap exposes the sentinel for well-known status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	default:
		return nil
	}
}

func (e *APIError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
