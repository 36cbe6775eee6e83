package webhook

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates a logical identifier resolved to no URL.
// The triggering operation must be aborted before any network call.
type ConfigurationError struct {
	Identifier string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("webhook %q has no configured URL", e.Identifier)
}

// TransportError indicates a network failure or a non-2xx HTTP response.
// During polling it is treated as transient; for one-shot operations it
// aborts the operation.
type TransportError struct {
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook returned HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("webhook request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError indicates a response body that was not valid JSON where JSON
// was expected.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("webhook response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if an error is an unresolved-identifier error.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError

	return errors.As(err, &target)
}

// IsTransportError checks if an error is a network or HTTP status failure.
func IsTransportError(err error) bool {
	var target *TransportError

	return errors.As(err, &target)
}

// IsParseError checks if an error is a malformed-response failure.
func IsParseError(err error) bool {
	var target *ParseError

	return errors.As(err, &target)
}
