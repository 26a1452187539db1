package twitter

import (
	"errors"
	"fmt"
)

// RateLimitError indicates the platform rejected a request because the
// current rate-limit window is exhausted. Callers are expected to wait
// out the window and retry.
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limit exceeded", e.Endpoint)
}

// APIError is any other non-success response from the platform.
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
}

// IsRateLimit reports whether err is a rate-limit rejection.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
