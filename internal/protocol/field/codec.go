package field

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Reader decodes primitives left to right from a payload.
type Reader struct {
	buf []byte
	off int
}

// NewReader creates a reader over payload. The reader never copies payload.
func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d at offset %d, have %d", ErrShortBuffer, n, r.off, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Uint reads an unsigned or bitfield kind and returns its raw value.
func (r *Reader) Uint(k Kind) (uint64, error) {
	b, err := r.take(k.Size())
	if err != nil {
		return 0, err
	}
	return loadUint(b), nil
}

// Int reads a signed kind, sign-extending to int64.
func (r *Reader) Int(k Kind) (int64, error) {
	b, err := r.take(k.Size())
	if err != nil {
		return 0, err
	}
	raw := loadUint(b)
	shift := 64 - k.Bits()
	return int64(raw<<shift) >> shift, nil
}

// Float reads an R4 or R8.
func (r *Reader) Float(k Kind) (float64, error) {
	b, err := r.take(k.Size())
	if err != nil {
		return 0, err
	}
	if k == R4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// Chars reads an n byte char array, cut at the first NUL.
func (r *Reader) Chars(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// Skip discards n bytes, used for reserved padding.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

func loadUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

// Writer appends primitives to a byte slice.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer appending to dst.
func NewWriter(dst []byte) *Writer {
	return &Writer{buf: dst}
}

// Bytes returns everything written so far, including the initial dst.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the length of Bytes.
func (w *Writer) Len() int { return len(w.buf) }

// Uint writes v in the width of k. Bits above the width are an overflow.
func (w *Writer) Uint(k Kind, v uint64) error {
	if k.Bits() < 64 && v>>k.Bits() != 0 {
		return fmt.Errorf("%w: %d does not fit %s", ErrOverflow, v, k)
	}
	w.store(k.Size(), v)
	return nil
}

// Int writes a signed value in the width of k.
func (w *Writer) Int(k Kind, v int64) error {
	if bits := k.Bits(); bits < 64 {
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if v < lo || v > hi {
			return fmt.Errorf("%w: %d does not fit %s", ErrOverflow, v, k)
		}
	}
	w.store(k.Size(), uint64(v))
	return nil
}

// Float writes an R4 or R8.
func (w *Writer) Float(k Kind, v float64) {
	if k == R4 {
		w.store(4, uint64(math.Float32bits(float32(v))))
		return
	}
	w.store(8, math.Float64bits(v))
}

// Chars writes s NUL-padded to n bytes.
func (w *Writer) Chars(s string, n int) error {
	if len(s) > n {
		return fmt.Errorf("%w: %d > %d", ErrStringTooLong, len(s), n)
	}
	w.buf = append(w.buf, s...)
	w.Zero(n - len(s))
	return nil
}

// Zero writes n zero bytes, used for reserved padding.
func (w *Writer) Zero(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) store(size int, v uint64) {
	switch size {
	case 1:
		w.buf = append(w.buf, byte(v))
	case 2:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
	case 4:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
	default:
		w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	}
}
