package frame

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"
)

var ackAck = []byte{0xb5, 0x62, 0x05, 0x01, 0x02, 0x00, 0x04, 0x05, 0x11, 0x38}

// class=1 id=2 len=4 payload=[1 0 0 0]
var navSample = []byte{0xb5, 0x62, 0x01, 0x02, 0x04, 0x00, 0x01, 0x00, 0x00, 0x00, 0x08, 0x32}

func collect(t *testing.T, p *Parser, data []byte) ([]Frame, []error) {
	t.Helper()
	var frames []Frame
	var errs []error
	for f, err := range p.Parse(data) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// Payload aliases the parser buffer; keep a copy.
		f.Payload = append([]byte(nil), f.Payload...)
		frames = append(frames, f)
	}
	return frames, errs
}

func TestComputeMatchesKnownFrame(t *testing.T) {
	a, b := Compute(ackAck[2:8])
	if a != 0x11 || b != 0x38 {
		t.Fatalf("checksum: got %02x %02x want 11 38", a, b)
	}
	var c Checksum
	for _, v := range navSample[2:10] {
		c.Add(v)
	}
	if a, b := c.Sum(); a != 0x08 || b != 0x32 {
		t.Fatalf("incremental checksum: got %02x %02x want 08 32", a, b)
	}
}

func TestEncodeProducesChecksumValidFrame(t *testing.T) {
	out, err := Encode(Frame{Class: 0x01, ID: 0x02, Payload: []byte{1, 0, 0, 0}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, navSample) {
		t.Fatalf("encode mismatch:\n got %x\nwant %x", out, navSample)
	}
}

func TestAppendKeepsPrefix(t *testing.T) {
	out, err := Append([]byte{0xaa}, Frame{Class: 5, ID: 1, Payload: []byte{4, 5}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !bytes.Equal(out[1:], ackAck) || out[0] != 0xaa {
		t.Fatalf("append mismatch: %x", out)
	}
}

func TestParseConcreteFrame(t *testing.T) {
	p := NewParser(NewGrowBuffer(DefaultMaxPayloadLen), DefaultLimits())
	frames, errs := collect(t, p, navSample)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("expected one frame, got frames=%d errs=%v", len(frames), errs)
	}
	f := frames[0]
	if f.Class != 1 || f.ID != 2 || !bytes.Equal(f.Payload, []byte{1, 0, 0, 0}) {
		t.Fatalf("unexpected frame: %v payload=%x", f, f.Payload)
	}
	if p.State() != StateSync1 {
		t.Fatalf("parser should return to sync1, got %v", p.State())
	}
}

func TestParseAlteredChecksumRejected(t *testing.T) {
	bad := append([]byte(nil), navSample...)
	bad[len(bad)-1]++
	p := NewFixedParser(64)
	frames, errs := collect(t, p, bad)
	if len(frames) != 0 || len(errs) != 1 {
		t.Fatalf("expected one rejection, got frames=%d errs=%d", len(frames), len(errs))
	}
	if !errors.Is(errs[0], ErrInvalidChecksum) {
		t.Fatalf("expected ErrInvalidChecksum, got %v", errs[0])
	}
	var rej *RejectError
	if !errors.As(errs[0], &rej) {
		t.Fatalf("expected *RejectError, got %T", errs[0])
	}
	if rej.Expected != 0x3308 || rej.Got != 0x3208 {
		t.Fatalf("unexpected checksum pair: expect=%04x got=%04x", rej.Expected, rej.Got)
	}
	if p.Stats().Checksum != 1 || p.State() != StateSync1 {
		t.Fatalf("unexpected parser after reject: %+v state=%v", p.Stats(), p.State())
	}
}

func TestParseSingleBitFlipsNeverAccepted(t *testing.T) {
	for i := range ackAck {
		for bit := 0; bit < 8; bit++ {
			in := append([]byte(nil), ackAck...)
			in[i] ^= 1 << bit
			p := NewParser(NewGrowBuffer(DefaultMaxPayloadLen), DefaultLimits())
			frames, _ := collect(t, p, in)
			if len(frames) != 0 {
				t.Fatalf("byte %d bit %d: flipped frame accepted: %v", i, bit, frames[0])
			}
		}
	}
}

func TestParseResyncAfterGarbage(t *testing.T) {
	garbage := []byte{0x00, 0xb5, 0x00, 0x62, 0xb5, 0xb5, 0x13, 0xff, 0xb5}
	in := append(append([]byte(nil), garbage...), ackAck...)
	p := NewFixedParser(16)
	frames, errs := collect(t, p, in)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("expected one frame after garbage, got frames=%d errs=%v", len(frames), errs)
	}
	if frames[0].Class != 0x05 || frames[0].ID != 0x01 {
		t.Fatalf("unexpected frame: %v", frames[0])
	}
	if p.Stats().Discarded != uint64(len(garbage)) {
		t.Fatalf("discarded: got %d want %d", p.Stats().Discarded, len(garbage))
	}
}

func TestParseStraySyncBeforeFrame(t *testing.T) {
	// A lone first marker directly before a real frame must not eat it.
	in := append([]byte{0xb5}, ackAck...)
	p := NewFixedParser(16)
	frames, errs := collect(t, p, in)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("expected one frame, got frames=%d errs=%v", len(frames), errs)
	}
}

func TestParseOversizeRejectedBeforePayload(t *testing.T) {
	storage := make([]byte, 8)
	buf := NewFixedBuffer(storage)
	p := NewParser(buf, DefaultLimits())
	header := []byte{0xb5, 0x62, 0x06, 0x24, 0x24, 0x00}
	n, _, ok, err := p.Consume(header)
	if ok || n != len(header) {
		t.Fatalf("unexpected consume: n=%d ok=%v", n, ok)
	}
	if !errors.Is(err, ErrOversizeLength) {
		t.Fatalf("expected ErrOversizeLength, got %v", err)
	}
	var rej *RejectError
	if !errors.As(err, &rej) || rej.Required != 0x24+Overhead {
		t.Fatalf("unexpected reject: %+v", rej)
	}
	if buf.Len() != 0 {
		t.Fatalf("payload bytes stored for oversize frame: %d", buf.Len())
	}

	// The parser recovers for the next, fitting frame.
	frames, errs := collect(t, p, ackAck)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("expected recovery, got frames=%d errs=%v", len(frames), errs)
	}
}

func TestParseLimitsNarrowerThanBuffer(t *testing.T) {
	p := NewParser(NewGrowBuffer(1024), Limits{MaxPayloadLen: 1})
	if p.Limit() != 1 {
		t.Fatalf("limit: got %d", p.Limit())
	}
	_, errs := collect(t, p, ackAck)
	if len(errs) != 1 || !errors.Is(errs[0], ErrOversizeLength) {
		t.Fatalf("expected oversize, got %v", errs)
	}
}

func TestPushSplitAcrossCalls(t *testing.T) {
	p := NewFixedParser(16)
	var got []Frame
	for i, b := range ackAck {
		f, ok, err := p.Push(b)
		if err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
		if ok {
			got = append(got, f)
		} else if i == len(ackAck)-1 {
			t.Fatalf("frame not accepted on last byte")
		}
	}
	if len(got) != 1 || !bytes.Equal(got[0].Payload, []byte{4, 5}) {
		t.Fatalf("unexpected frames: %v", got)
	}
}

func TestConsumeKeepsPartialState(t *testing.T) {
	p := NewFixedParser(16)
	n, _, ok, err := p.Consume(ackAck[:7])
	if n != 7 || ok || err != nil {
		t.Fatalf("partial consume: n=%d ok=%v err=%v", n, ok, err)
	}
	if p.State() != StatePayload {
		t.Fatalf("state: got %v want %v", p.State(), StatePayload)
	}
	n, f, ok, err := p.Consume(append(ackAck[7:], ackAck...))
	if !ok || err != nil || n != 3 {
		t.Fatalf("resume: n=%d ok=%v err=%v", n, ok, err)
	}
	if f.Class != 5 || f.ID != 1 {
		t.Fatalf("unexpected frame %v", f)
	}
}

func TestParseMultipleFramesAndPoll(t *testing.T) {
	poll, err := Encode(Frame{Class: 0x0a, ID: 0x04})
	if err != nil {
		t.Fatalf("encode poll: %v", err)
	}
	if len(poll) != Overhead {
		t.Fatalf("poll length: %d", len(poll))
	}
	var in []byte
	in = append(in, ackAck...)
	in = append(in, 0x00, 0x01)
	in = append(in, poll...)
	in = append(in, navSample...)
	p := NewParser(NewGrowBuffer(64), DefaultLimits())
	frames, errs := collect(t, p, in)
	if len(errs) != 0 || len(frames) != 3 {
		t.Fatalf("expected 3 frames, got frames=%d errs=%v", len(frames), errs)
	}
	if frames[1].Class != 0x0a || len(frames[1].Payload) != 0 {
		t.Fatalf("unexpected poll frame: %v", frames[1])
	}
	if p.Stats().Accepted != 3 {
		t.Fatalf("accepted: %d", p.Stats().Accepted)
	}
}

func TestParseStopsWhenConsumerBreaks(t *testing.T) {
	p := NewFixedParser(16)
	in := append(append([]byte(nil), ackAck...), ackAck...)
	count := 0
	for range p.Parse(in) {
		count++
		break
	}
	if count != 1 || p.Stats().Accepted != 1 {
		t.Fatalf("expected exactly one frame processed, got count=%d accepted=%d", count, p.Stats().Accepted)
	}
}

func TestReadWriteFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Frame{Class: 0x06, ID: 0x08, Payload: []byte{0xe8, 0x03, 0x01, 0x00, 0x01, 0x00}}
	if err := WriteFrame(&buf, in, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	p := NewFixedParser(32)
	out, err := ReadFrame(bufio.NewReader(&buf), p)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if out.Class != in.Class || out.ID != in.ID || !bytes.Equal(out.Payload, in.Payload) {
		t.Fatalf("round trip mismatch: got %v want %v", out, in)
	}
}

func TestReadFrameEOF(t *testing.T) {
	p := NewFixedParser(32)
	if _, err := ReadFrame(bytes.NewReader(nil), p); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader(ackAck[:5]), p); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	// State survives the short read; the tail completes the frame.
	f, err := ReadFrame(bytes.NewReader(ackAck[5:]), p)
	if err != nil || f.Class != 5 {
		t.Fatalf("resume read: %v %v", f, err)
	}
}

func TestWriteFrameRejectsOversize(t *testing.T) {
	err := WriteFrame(io.Discard, Frame{Payload: make([]byte, 10)}, Limits{MaxPayloadLen: 4})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := Encode(Frame{Payload: make([]byte, MaxPayloadLen+1)}); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge from Encode, got %v", err)
	}
}

func TestBuffers(t *testing.T) {
	fixed := NewFixedBuffer(make([]byte, 2))
	if !fixed.Append(1) || !fixed.Append(2) || fixed.Append(3) {
		t.Fatalf("fixed buffer capacity not enforced")
	}
	if !bytes.Equal(fixed.Bytes(), []byte{1, 2}) {
		t.Fatalf("fixed bytes: %x", fixed.Bytes())
	}
	fixed.Reset()
	if fixed.Len() != 0 || fixed.Cap() != 2 {
		t.Fatalf("fixed reset: len=%d cap=%d", fixed.Len(), fixed.Cap())
	}

	grow := NewGrowBuffer(3)
	for i := 0; i < 3; i++ {
		if !grow.Append(byte(i)) {
			t.Fatalf("grow append %d failed", i)
		}
	}
	if grow.Append(9) {
		t.Fatalf("grow buffer max not enforced")
	}
	grow.Reset()
	if grow.Len() != 0 || grow.Cap() != 3 {
		t.Fatalf("grow reset: len=%d cap=%d", grow.Len(), grow.Cap())
	}
}
