package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable covers transport failures, timeouts and non-2xx replies.
	ErrServiceUnavailable = errors.New("llm service unavailable")
	// ErrMalformedResponse covers undecodable bodies and replies without content.
	ErrMalformedResponse = errors.New("llm returned malformed response")
)

// Unavailable wraps cause so that errors.Is(err, ErrServiceUnavailable) holds.
func Unavailable(backend string, cause error) error {
	return fmt.Errorf("%s: %w: %v", backend, ErrServiceUnavailable, cause)
}

// Malformed wraps cause so that errors.Is(err, ErrMalformedResponse) holds.
func Malformed(backend string, cause error) error {
	return fmt.Errorf("%s: %w: %v", backend, ErrMalformedResponse, cause)
}
