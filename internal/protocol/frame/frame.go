// Package frame implements UBX framing. Parser recovers checksummed frames
// from a noisy byte stream; Append and Encode build outbound ones.
//
// Frame layout (little-endian):
//
//	[0]      sync1    0xB5
//	[1]      sync2    0x62
//	[2]      class    uint8
//	[3]      id       uint8
//	[4-5]    length   uint16, payload bytes only
//	[6..n]   payload
//	[n+1]    ck_a
//	[n+2]    ck_b     checksum over class..payload
package frame

import (
	"errors"
	"fmt"
	"io"
)

const (
	Sync1 byte = 0xB5
	Sync2 byte = 0x62

	HeaderLen   = 6
	ChecksumLen = 2
	Overhead    = HeaderLen + ChecksumLen

	// MaxPayloadLen is the largest length the u16 header field can carry.
	MaxPayloadLen = 0xFFFF
	// DefaultMaxPayloadLen covers every message of the supported revisions
	// except unbounded repeated groups.
	DefaultMaxPayloadLen = 1240
)

var ErrPayloadTooLarge = errors.New("frame: payload too large")

// Frame is one validated wire unit. Payload is raw message content.
type Frame struct {
	Class   uint8
	ID      uint8
	Payload []byte
}

// Len returns the full encoded size of the frame.
func (f Frame) Len() int {
	return Overhead + len(f.Payload)
}

func (f Frame) String() string {
	return fmt.Sprintf("frame(class=0x%02x id=0x%02x len=%d)", f.Class, f.ID, len(f.Payload))
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadLen int
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadLen: DefaultMaxPayloadLen}
}

func (l Limits) maxPayload() int {
	if l.MaxPayloadLen <= 0 || l.MaxPayloadLen > MaxPayloadLen {
		return MaxPayloadLen
	}
	return l.MaxPayloadLen
}

// Append encodes f onto dst with sync bytes, header and checksum.
func Append(dst []byte, f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayloadLen {
		return dst, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}
	start := len(dst)
	n := uint16(len(f.Payload))
	dst = append(dst, Sync1, Sync2, f.Class, f.ID, byte(n), byte(n>>8))
	dst = append(dst, f.Payload...)
	a, b := Compute(dst[start+2:])
	return append(dst, a, b), nil
}

// Encode returns f as a freshly allocated, emit-ready byte slice.
func Encode(f Frame) ([]byte, error) {
	return Append(make([]byte, 0, f.Len()), f)
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	if len(f.Payload) > limits.maxPayload() {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}
	buf, err := Encode(f)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame pulls bytes from r through p until a frame is accepted or
// rejected. A rejection is returned as *RejectError and leaves p ready for
// the next call. Read errors from r are returned unchanged and the parser
// keeps its partial state, so ReadFrame can resume once r has more data.
// The payload aliases p's buffer and is valid until the next call.
func ReadFrame(r io.ByteReader, p *Parser) (Frame, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && p.State() != StateSync1 {
				return Frame{}, io.ErrUnexpectedEOF
			}
			return Frame{}, err
		}
		f, ok, err := p.Push(b)
		if err != nil {
			return Frame{}, err
		}
		if ok {
			return f, nil
		}
	}
}
