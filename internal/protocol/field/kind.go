// Package field owns the primitive encodings UBX payloads are built from.
//
// Every primitive is little-endian and fixed width. Message layouts are
// declared with `ubx` struct tags; see ParseTag for the grammar.
package field

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShortBuffer   = errors.New("field: insufficient bytes")
	ErrOverflow      = errors.New("field: value overflows storage width")
	ErrStringTooLong = errors.New("field: string longer than char array")
	ErrInvalidKind   = errors.New("field: invalid kind")
	ErrInvalidTag    = errors.New("field: invalid tag")
	ErrInvalidScale  = errors.New("field: invalid scale")
	ErrNotBitfield   = errors.New("field: kind is not a bitfield")
	ErrBitOutOfRange = errors.New("field: bit range outside storage width")
)

// Kind identifies a wire primitive.
type Kind uint8

const (
	Invalid Kind = iota
	U1
	U2
	U4
	U8
	I1
	I2
	I4
	I8
	X1
	X2
	X4
	X8
	R4
	R8
	CH
	Reserved
)

var kindNames = map[Kind]string{
	U1:       "u1",
	U2:       "u2",
	U4:       "u4",
	U8:       "u8",
	I1:       "i1",
	I2:       "i2",
	I4:       "i4",
	I8:       "i8",
	X1:       "x1",
	X2:       "x2",
	X4:       "x4",
	X8:       "x8",
	R4:       "r4",
	R8:       "r8",
	CH:       "ch",
	Reserved: "reserved",
}

var kindByName = func() map[string]Kind {
	out := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		out[name] = k
	}
	return out
}()

// ParseKind resolves a tag kind name such as "u4" or "x1".
func ParseKind(name string) (Kind, error) {
	k, ok := kindByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Invalid, fmt.Errorf("%w: %q", ErrInvalidKind, name)
	}
	return k, nil
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Size returns the width in bytes of one element of the kind.
// CH and Reserved are one byte per element; their length comes from the tag.
func (k Kind) Size() int {
	switch k {
	case U1, I1, X1, CH, Reserved:
		return 1
	case U2, I2, X2:
		return 2
	case U4, I4, X4, R4:
		return 4
	case U8, I8, X8, R8:
		return 8
	default:
		return 0
	}
}

func (k Kind) Signed() bool {
	return k == I1 || k == I2 || k == I4 || k == I8
}

func (k Kind) Unsigned() bool {
	return k == U1 || k == U2 || k == U4 || k == U8
}

func (k Kind) Bitfield() bool {
	return k == X1 || k == X2 || k == X4 || k == X8
}

// Integer reports whether the kind is stored as a plain integer
// (signed, unsigned or bitfield).
func (k Kind) Integer() bool {
	return k.Signed() || k.Unsigned() || k.Bitfield()
}

func (k Kind) Float() bool {
	return k == R4 || k == R8
}

// Bits returns the storage width in bits for integer and float kinds.
func (k Kind) Bits() uint {
	return uint(k.Size()) * 8
}
