package codec

import "errors"

var (
	// ErrTruncated represents insufficient remaining bytes for a fixed-width or length-prefixed field.
	ErrTruncated = errors.New("truncated data")
	// ErrMalformed represents data of valid length but invalid content.
	ErrMalformed = errors.New("malformed data")
	// ErrOutOfRange represents a value violating the static precondition of an encoder.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnreadBytes represents extra bytes not read.
	ErrUnreadBytes = errors.New("unread bytes exist")
)
