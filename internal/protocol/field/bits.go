package field

import "fmt"

// Bit names a single bit or a contiguous bit range inside a bitfield.
type Bit struct {
	Name   string
	Offset uint8
	Width  uint8
}

// Flag is a one bit wide Bit.
func Flag(name string, offset uint8) Bit {
	return Bit{Name: name, Offset: offset, Width: 1}
}

// Range is a multi bit Bit.
func Range(name string, offset, width uint8) Bit {
	return Bit{Name: name, Offset: offset, Width: width}
}

func (b Bit) mask() uint64 {
	if b.Width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1)<<b.Width - 1) << b.Offset
}

// Get extracts the bit value from raw.
func (b Bit) Get(raw uint64) uint64 {
	return (raw & b.mask()) >> b.Offset
}

// Set stores v into the bit range of raw and returns the new raw value.
// Bits outside the range are left untouched.
func (b Bit) Set(raw, v uint64) uint64 {
	return raw&^b.mask() | (v<<b.Offset)&b.mask()
}

// BitNamer is implemented by bitfield types that name their bits. The
// bitfield keeps the full raw integer, so bits without a name survive a
// decode/encode cycle.
type BitNamer interface {
	Bits() []Bit
}

// Unnamed returns the raw bits not covered by any named Bit.
func Unnamed(raw uint64, bits []Bit) uint64 {
	for _, b := range bits {
		raw &^= b.mask()
	}
	return raw
}

// ValidateBits checks that every named range fits inside kind k and that
// no two ranges overlap.
func ValidateBits(k Kind, bits []Bit) error {
	if !k.Bitfield() {
		return fmt.Errorf("%w: %s", ErrNotBitfield, k)
	}
	var seen uint64
	for _, b := range bits {
		if b.Width == 0 || uint(b.Offset)+uint(b.Width) > k.Bits() {
			return fmt.Errorf("%w: %s at %d+%d in %s", ErrBitOutOfRange, b.Name, b.Offset, b.Width, k)
		}
		if seen&b.mask() != 0 {
			return fmt.Errorf("%w: %s overlaps another bit", ErrBitOutOfRange, b.Name)
		}
		seen |= b.mask()
	}
	return nil
}
