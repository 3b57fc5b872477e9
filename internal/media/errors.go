package media

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMediaFile marks files with an unrecognised extension. It is a skip, not a failure.
	ErrNotMediaFile = errors.New("not a media file")

	// ErrNotFound marks files the metadata providers could not identify
	ErrNotFound = errors.New("no metadata match")

	// ErrAlreadyExists marks a destination that exists while overwrite is disabled
	ErrAlreadyExists = errors.New("destination already exists")

	// ErrFilesystem marks directory, rename, copy or permission failures
	ErrFilesystem = errors.New("filesystem failure")
)

// NotFoundError records which provider kind failed to match a title
type NotFoundError struct {
	Kind  Kind
	Title string
	Year  int
}

func (e *NotFoundError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("%s %q (%d): %v", e.Kind, e.Title, e.Year, ErrNotFound)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Title, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// FilesystemError wraps an OS error with the operation that failed
func FilesystemError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrFilesystem, op, path, err)
}
