package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// RepoNotFound indicates the remote repository path does not exist (HTTP 404).
	RepoNotFound
	// NetworkError indicates a remote host could not be reached (HTTP 502).
	NetworkError
	// BrowserError indicates the rendering engine has become unusable.
	// Always fatal to the current run (HTTP 500).
	BrowserError
)

// AppError carries a category, an optional machine-readable code, a user
// message, and the original cause.
type AppError struct {
	Kind    Kind
	Code    string
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

// KindOf returns the Kind of err if it is an *AppError, or Unknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}
