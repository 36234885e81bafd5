package schema

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch   = errors.New("schema: payload length mismatch")
	ErrFieldDecode      = errors.New("schema: field decode failed")
	ErrFieldEncode      = errors.New("schema: field encode failed")
	ErrCountMismatch    = errors.New("schema: count field disagrees with group length")
	ErrUnknownMessage   = errors.New("schema: message not registered")
	ErrTypeMismatch     = errors.New("schema: value type does not match message")
	ErrDuplicateMessage = errors.New("schema: duplicate message")
	ErrLayout           = errors.New("schema: invalid message layout")
)

// LengthError reports a payload whose size does not fit the definition.
// Stride is the group element size for variable-length messages.
type LengthError struct {
	Message string
	Want    int
	Stride  int
	Got     int
}

func (e *LengthError) Error() string {
	if e.Stride > 0 {
		return fmt.Sprintf("%v: %s: got %d, want %d + n*%d", ErrLengthMismatch, e.Message, e.Got, e.Want, e.Stride)
	}
	return fmt.Sprintf("%v: %s: got %d, want %d", ErrLengthMismatch, e.Message, e.Got, e.Want)
}

func (e *LengthError) Unwrap() error { return ErrLengthMismatch }

// FieldError reports the field that failed. Op is ErrFieldDecode or
// ErrFieldEncode; Err is the primitive failure such as field.ErrShortBuffer.
type FieldError struct {
	Message string
	Field   string
	Op      error
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s.%s: %v", e.Op, e.Message, e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error { return []error{e.Op, e.Err} }

// LayoutError reports a message type whose tags cannot be compiled.
type LayoutError struct {
	Type   string
	Field  string
	Reason string
}

func (e *LayoutError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s: %s", ErrLayout, e.Type, e.Reason)
	}
	return fmt.Sprintf("%v: %s.%s: %s", ErrLayout, e.Type, e.Field, e.Reason)
}

func (e *LayoutError) Unwrap() error { return ErrLayout }
