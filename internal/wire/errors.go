package wire

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated   = errors.New("wire: truncated data")
	ErrOverflow    = errors.New("wire: varint overflow")
	ErrInvalidUTF8 = errors.New("wire: invalid utf-8 in string field")
	ErrFieldNumber = errors.New("wire: invalid field number")
	ErrMalformed   = errors.New("wire: malformed data")
)

// DecodeError reports where and why a buffer could not be decoded.
type DecodeError struct {
	Op     string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: decode %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a field value the wire format cannot carry.
type EncodeError struct {
	Field Number
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("wire: encode field %d: %v", e.Field, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Malformed wraps a structural failure detected above the primitive layer,
// such as a fallback payload that does not match its message shape.
func Malformed(op string, err error) error {
	return &DecodeError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}
