package route

import "errors"

// Sentinel kinds for request decoding.
var (
	ErrMalformed    = errors.New("malformed route request")
	ErrMissingField = errors.New("missing field")
	ErrInvalidField = errors.New("invalid field")
)

// FieldError names the request key that failed decoding.
type FieldError struct {
	Field string
	Kind  error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Kind, ErrMissingField) {
		return "missing field: " + e.Field
	}
	return "field " + e.Field + " must be a string"
}

func (e *FieldError) Unwrap() error { return e.Kind }
