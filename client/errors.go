package client

import (
	"fmt"

	"github.com/lglanville/gopreservica/client/errcode"
)

// AuthError indicates a failure of the login, refresh, or revoke exchange.
type AuthError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("client: %s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *AuthError) Unwrap() error { return e.Err }

// HTTPError wraps a non-2xx response from an entity operation. The core
// never retries on this error; callers decide.
type HTTPError struct {
	Op         string
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("client: %s %s: status %d", e.Op, e.URL, e.StatusCode)
}

// ErrorCode classifies e using the repository's stable error taxonomy.
func (e *HTTPError) ErrorCode() errcode.ErrorCode {
	return errcode.FromHTTPStatus(e.StatusCode)
}
