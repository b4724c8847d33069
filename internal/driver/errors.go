package driver

import (
	"context"
	"errors"

	"cbrace/internal/format"
	"cbrace/internal/source"
)

var (
	// ErrNoSourceFiles is returned when the given paths hold nothing to format.
	ErrNoSourceFiles = errors.New("format: no source files found")
	// ErrProjectDirMissing is returned when none of the project source
	// directories exist.
	ErrProjectDirMissing = errors.New("project source directory not found")
)

// ErrorKind classifies a per-file failure for reporting.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindSourceUnavailable ErrorKind = "source-unavailable"
	KindMalformedInput    ErrorKind = "malformed-input"
	KindSinkFailure       ErrorKind = "sink-failure"
	KindCanceled          ErrorKind = "canceled"
	KindUnknown           ErrorKind = "unknown"
)

// Classify maps an error returned by the driver to its ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, source.ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, format.ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, source.ErrSinkFailure):
		return KindSinkFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
