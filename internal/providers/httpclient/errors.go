package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string

	// RetryAfter is the parsed Retry-After header, zero if absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("upstream returned status %d: %s (URL: %s)", e.StatusCode, e.Body, e.URL)
}

// Is maps status codes onto domain errors: 429 matches
// domain.ErrRateLimited, 401 and 403 match domain.ErrUnauthorized and 404
// matches domain.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case domain.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error indicates upstream throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. Returns zero if the header is absent or unparseable.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
