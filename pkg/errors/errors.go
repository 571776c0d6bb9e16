package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable indicates that an external model or storage call failed
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrMalformedOutput indicates that a model returned output that could not be parsed
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)
