// Package errors provides error wrapping utilities and the sentinel errors
// shared by the prompt-to-image pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrNotFound is returned by object stores when the requested key does not exist.
	ErrNotFound = stderrors.New("object not found")

	// ErrMalformedResponse is returned when the model response cannot be parsed.
	ErrMalformedResponse = stderrors.New("malformed model response")

	// ErrNoArtifacts is returned when the model response carries no image artifact.
	ErrNoArtifacts = stderrors.New("model response has no artifacts")

	// ErrImageDecode is returned when artifact bytes are not a decodable image.
	ErrImageDecode = stderrors.New("image decode failed")

	// ErrLimitExceeded is returned when an input exceeds a configured size limit.
	ErrLimitExceeded = stderrors.New("limit exceeded")
)

// Wrap wraps an error with additional context information.
// If err is nil, it returns nil without wrapping.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join returns an error that wraps the given errors, or nil if all are nil.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
