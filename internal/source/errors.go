package source

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a file that could not be opened, read or decoded.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSinkFailure marks a failed write of formatted output.
	ErrSinkFailure = errors.New("sink failure")
)

func sourceError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
}

func sinkError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSinkFailure, path, err)
}
