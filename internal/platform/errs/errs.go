package errs

import "fmt"

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error (HTTP 500).
	Unknown Kind = iota
	// Validation indicates the request was malformed or the target URL is
	// not an absolute http(s) URL (HTTP 422). No network call is made.
	Validation
	// Fetch indicates the target could not be retrieved: DNS failure,
	// refused or reset connection, timeout, oversized body (HTTP 500).
	Fetch
	// Parse indicates the fetched document could not be parsed (HTTP 500).
	Parse
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Fetch:
		return "fetch"
	case Parse:
		return "parse"
	default:
		return "unknown"
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
