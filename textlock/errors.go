package textlock

import (
	"errors"
	"fmt"
)

var (
	ErrEncoding                   = errors.New("text is not ASCII")
	ErrMalformedLockedValue       = errors.New("malformed locked value")
	ErrWrongPasswordOrCorruptData = errors.New("wrong password or corrupt data")
	ErrInvalidIterations          = errors.New("invalid iteration count")
)

// EncodingError reports text that cannot be locked
type EncodingError struct {
	Op     string // Operation that rejected the text
	Offset int    // Byte offset of the first offending character
	Char   rune   // Offending character, utf8.RuneError for invalid UTF-8
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: character %q (U+%04X) at offset %d is outside ASCII", e.Op, e.Char, e.Char, e.Offset)
}

// Unwrap lets errors.Is match ErrEncoding
func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}
