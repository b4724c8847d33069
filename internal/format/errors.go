package format

import (
	"errors"
	"fmt"
)

// ErrMalformedInput marks input the passes refuse to rewrite.
var ErrMalformedInput = errors.New("malformed input")

// UnterminatedCommentError is returned when a block comment opened on Line
// (1-based) is never closed.
type UnterminatedCommentError struct {
	Line int
}

func (e *UnterminatedCommentError) Error() string {
	return fmt.Sprintf("line %d: unterminated block comment", e.Line)
}

func (e *UnterminatedCommentError) Unwrap() error { return ErrMalformedInput }
