package protocol

import (
	"errors"

	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
)

var (
	ErrInvalidChecksum = frame.ErrInvalidChecksum
	ErrOversizeLength  = frame.ErrOversizeLength
	ErrPayloadTooLarge = frame.ErrPayloadTooLarge
	ErrLengthMismatch  = schema.ErrLengthMismatch
	ErrFieldDecode     = schema.ErrFieldDecode
	ErrFieldEncode     = schema.ErrFieldEncode
	ErrCountMismatch   = schema.ErrCountMismatch
	ErrUnknownMessage  = schema.ErrUnknownMessage
	ErrTypeMismatch    = schema.ErrTypeMismatch
)

type (
	RejectError = frame.RejectError
	LengthError = schema.LengthError
	FieldError  = schema.FieldError
)

// Recoverable reports whether a stream may keep going after err: a rejected
// frame or an undecodable payload only costs that frame.
func Recoverable(err error) bool {
	if err == nil {
		return true
	}
	return errors.Is(err, frame.ErrInvalidChecksum) ||
		errors.Is(err, frame.ErrOversizeLength) ||
		errors.Is(err, schema.ErrLengthMismatch) ||
		errors.Is(err, schema.ErrFieldDecode)
}
