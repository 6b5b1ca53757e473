package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthorizationDenied matches a 401 or 403 from the vault API. Callers treat it
	// as a dead credential.
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrNotFound            = errors.New("not found")
	// ErrNetwork covers transport failures and per-request timeouts.
	ErrNetwork = errors.New("network failure")
	// ErrFetch matches any non-2xx answer from the media host. It never
	// implies anything about the vault credential.
	ErrFetch = errors.New("media fetch failed")
)

// StatusError is a non-2xx answer from the vault API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("vault api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("vault api: status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthorizationDenied
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// FetchError is a non-2xx answer to an uncredentialed media download.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("media fetch: GET %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return ErrFetch }
