// ABOUTME: Error values for the JamRadio wire protocol
// ABOUTME: Frame decoding and state snapshot parsing failures
package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSignature is returned when a frame starts with an unexpected signature byte
	ErrBadSignature = errors.New("bad frame signature")

	// ErrTruncated is returned when the stream ends before all declared bytes arrive
	ErrTruncated = errors.New("truncated frame")

	// ErrFrameTooLarge is returned when a declared length exceeds the decoder ceiling
	ErrFrameTooLarge = errors.New("frame exceeds size limit")
)

// StateParseError reports a server state snapshot that could not be parsed.
// The previously cached snapshot stays authoritative.
type StateParseError struct {
	Raw string
	Err error
}

func (e *StateParseError) Error() string {
	return fmt.Sprintf("failed to parse server state: %v", e.Err)
}

func (e *StateParseError) Unwrap() error {
	return e.Err
}
