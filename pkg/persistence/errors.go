package persistence

import "errors"

var (
	ErrEndpointNotFound   = errors.New("webhook endpoint not found")
	ErrIdentifierRequired = errors.New("webhook endpoint identifier is required")
	ErrURLRequired        = errors.New("webhook endpoint URL is required")
)

// IsEndpointNotFound checks if an error indicates a missing endpoint row.
func IsEndpointNotFound(err error) bool {
	return errors.Is(err, ErrEndpointNotFound)
}

// IsValidationError checks if an error is a persistence-level validation
// failure that should map to a client error at the API boundary.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrIdentifierRequired) || errors.Is(err, ErrURLRequired)
}
