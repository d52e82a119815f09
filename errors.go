package graphtran

import (
	"errors"
	"fmt"
)

// Sentinel errors for schema and response handling.
// All use prefix "graphtran:" for identification. Callers should use errors.Is/errors.As.
var (
	ErrSchemaParse       = errors.New("graphtran: embedded response schema failed to parse")
	ErrEmptyResponse     = errors.New("graphtran: response contains no choices or content")
	ErrMalformedResponse = errors.New("graphtran: response content is not a valid translation")
)

// ResponseError is an error-shaped provider payload ({"error": ...}) surfaced
// as a typed error. Use errors.As to recover the provider message.
type ResponseError struct {
	Message string
}

// Error implements error.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("graphtran: provider returned error: %s", e.Message)
}

// Compile-time check that ResponseError implements error.
var _ error = (*ResponseError)(nil)
