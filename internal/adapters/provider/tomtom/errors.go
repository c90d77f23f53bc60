package tomtom

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream failures.
var (
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	ErrUnavailable    = errors.New("upstream unavailable")
	ErrTimeout        = errors.New("upstream timed out")
	ErrInvalidPayload = errors.New("upstream returned invalid payload")
)

// StatusError carries the status of a non-200 upstream response.
type StatusError struct {
	Code int
	// Body is a bounded prefix of the upstream body, kept for logs only.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

// Is lets errors.Is(err, ErrUpstreamStatus) match any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// Kind returns a short label for err, suitable for metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUpstreamStatus):
		return "status"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}
