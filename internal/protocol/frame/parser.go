package frame

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrInvalidChecksum = errors.New("frame: invalid checksum")
	ErrOversizeLength  = errors.New("frame: declared length exceeds buffer capacity")
)

// State is the parser's position within the expected frame layout.
type State uint8

const (
	StateSync1 State = iota
	StateSync2
	StateClass
	StateID
	StateLenLow
	StateLenHigh
	StatePayload
	StateChecksumA
	StateChecksumB
)

var stateNames = [...]string{
	StateSync1:     "seek_sync1",
	StateSync2:     "seek_sync2",
	StateClass:     "read_class",
	StateID:        "read_id",
	StateLenLow:    "read_len_low",
	StateLenHigh:   "read_len_high",
	StatePayload:   "read_payload",
	StateChecksumA: "read_ck_a",
	StateChecksumB: "read_ck_b",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// RejectError reports a frame the parser dropped. Reason is
// ErrInvalidChecksum or ErrOversizeLength.
type RejectError struct {
	Reason error
	Class  uint8
	ID     uint8
	Length uint16
	// Expected and Got hold ck_a|ck_b<<8 for checksum failures.
	Expected uint16
	Got      uint16
	// Required is the full frame size an oversize frame would have needed.
	Required int
}

func (e *RejectError) Error() string {
	if errors.Is(e.Reason, ErrOversizeLength) {
		return fmt.Sprintf("%v: class=0x%02x id=0x%02x len=%d required=%d", e.Reason, e.Class, e.ID, e.Length, e.Required)
	}
	return fmt.Sprintf("%v: class=0x%02x id=0x%02x len=%d expect=0x%04x got=0x%04x", e.Reason, e.Class, e.ID, e.Length, e.Expected, e.Got)
}

func (e *RejectError) Unwrap() error { return e.Reason }

// Stats counts parser outcomes since construction.
type Stats struct {
	Accepted  uint64
	Checksum  uint64
	Oversize  uint64
	Discarded uint64
}

// Parser is a resynchronizing byte-at-a-time UBX frame recognizer. It never
// blocks: when input runs out mid-frame the state is kept for the next call.
// A Parser serves exactly one byte stream and is not safe for concurrent use.
type Parser struct {
	state  State
	class  uint8
	id     uint8
	length uint16
	ckA    byte
	sum    Checksum
	buf    Buffer
	limit  int
	stats  Stats
}

// NewParser builds a parser accumulating payloads into buf. The effective
// payload limit is the smaller of buf.Cap() and limits.MaxPayloadLen.
func NewParser(buf Buffer, limits Limits) *Parser {
	limit := limits.maxPayload()
	if c := buf.Cap(); c < limit {
		limit = c
	}
	return &Parser{buf: buf, limit: limit}
}

// NewFixedParser is a parser over a fixed buffer of size bytes.
func NewFixedParser(size int) *Parser {
	return NewParser(NewFixedBuffer(make([]byte, size)), Limits{MaxPayloadLen: size})
}

// State returns the current position in the frame layout.
func (p *Parser) State() State { return p.state }

// Limit returns the largest payload length the parser accepts.
func (p *Parser) Limit() int { return p.limit }

func (p *Parser) Stats() Stats { return p.stats }

// Reset drops any partial frame and returns to seeking sync.
func (p *Parser) Reset() {
	p.state = StateSync1
	p.class, p.id, p.length, p.ckA = 0, 0, 0, 0
	p.sum.Reset()
	p.buf.Reset()
}

// Push consumes one byte. It returns (frame, true, nil) when a frame is
// accepted, (Frame{}, false, *RejectError) when one is rejected, and
// (Frame{}, false, nil) when more input is needed. An accepted payload
// aliases the parser's buffer and is valid until the next call.
func (p *Parser) Push(b byte) (Frame, bool, error) {
	switch p.state {
	case StateSync1:
		if b == Sync1 {
			p.state = StateSync2
		} else {
			p.stats.Discarded++
		}
	case StateSync2:
		switch b {
		case Sync2:
			p.sum.Reset()
			p.buf.Reset()
			p.state = StateClass
		case Sync1:
			// The previous marker was noise; this byte may open a frame.
			p.stats.Discarded++
		default:
			p.stats.Discarded += 2
			p.state = StateSync1
		}
	case StateClass:
		p.class = b
		p.sum.Add(b)
		p.state = StateID
	case StateID:
		p.id = b
		p.sum.Add(b)
		p.state = StateLenLow
	case StateLenLow:
		p.length = uint16(b)
		p.sum.Add(b)
		p.state = StateLenHigh
	case StateLenHigh:
		p.length |= uint16(b) << 8
		p.sum.Add(b)
		if int(p.length) > p.limit {
			return p.reject(&RejectError{
				Reason:   ErrOversizeLength,
				Class:    p.class,
				ID:       p.id,
				Length:   p.length,
				Required: int(p.length) + Overhead,
			})
		}
		if p.length == 0 {
			p.state = StateChecksumA
		} else {
			p.state = StatePayload
		}
	case StatePayload:
		p.sum.Add(b)
		if !p.buf.Append(b) {
			return p.reject(&RejectError{
				Reason:   ErrOversizeLength,
				Class:    p.class,
				ID:       p.id,
				Length:   p.length,
				Required: int(p.length) + Overhead,
			})
		}
		if p.buf.Len() == int(p.length) {
			p.state = StateChecksumA
		}
	case StateChecksumA:
		p.ckA = b
		p.state = StateChecksumB
	case StateChecksumB:
		a, c := p.sum.Sum()
		if a != p.ckA || c != b {
			return p.reject(&RejectError{
				Reason:   ErrInvalidChecksum,
				Class:    p.class,
				ID:       p.id,
				Length:   p.length,
				Expected: Pack(p.ckA, b),
				Got:      Pack(a, c),
			})
		}
		p.stats.Accepted++
		p.state = StateSync1
		return Frame{Class: p.class, ID: p.id, Payload: p.buf.Bytes()}, true, nil
	}
	return Frame{}, false, nil
}

func (p *Parser) reject(err *RejectError) (Frame, bool, error) {
	if errors.Is(err.Reason, ErrOversizeLength) {
		p.stats.Oversize++
	} else {
		p.stats.Checksum++
	}
	p.Reset()
	return Frame{}, false, err
}

// Consume feeds data until the first accepted or rejected frame and returns
// how many bytes were used. n == len(data) with no frame and no error means
// the input ran out; the partial frame is kept for the next call.
func (p *Parser) Consume(data []byte) (n int, f Frame, ok bool, err error) {
	for i, b := range data {
		f, ok, err = p.Push(b)
		if ok || err != nil {
			return i + 1, f, ok, err
		}
	}
	return len(data), Frame{}, false, nil
}

// Parse iterates over every frame outcome in data. Each step yields either
// an accepted frame with a nil error or a *RejectError. If the loop stops
// early the unread tail of data is not fed to the parser.
func (p *Parser) Parse(data []byte) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		for len(data) > 0 {
			n, f, ok, err := p.Consume(data)
			data = data[n:]
			if !ok && err == nil {
				return
			}
			if !yield(f, err) {
				return
			}
		}
	}
}
