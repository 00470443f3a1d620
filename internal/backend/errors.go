package backend

import (
	"errors"
	"fmt"
)

// Configuration problems fail fast at construction and are never
// retried.
var (
	ErrMissingBaseURL = errors.New("order API base URL is empty")
	ErrMissingAPIKey  = errors.New("order API key is empty")
)

// NetworkError wraps a transport-level failure (DNS, refused
// connection, CORS-less timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("order API request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response, carrying status and body text for
// the operator-facing message.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("order API HTTP %d: %s", e.Status, e.Body)
}

// DecodeError is a malformed response body. A decode failure aborts
// the whole page load; no partially-mapped set is ever admitted.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("order API response decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
