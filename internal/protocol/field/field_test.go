package field

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"u1", "U4", " i2 ", "x8", "r4", "ch", "reserved"} {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if k.Size() == 0 {
			t.Fatalf("%q has no size", name)
		}
	}
	if _, err := ParseKind("u3"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if I4.Bits() != 32 || !I4.Signed() || !X2.Bitfield() || X2.Unsigned() || !R8.Float() || !U8.Integer() {
		t.Fatalf("kind predicates disagree")
	}
}

func TestReaderWriterIntegers(t *testing.T) {
	w := NewWriter([]byte{0xee})
	if err := w.Uint(U2, 0x1234); err != nil {
		t.Fatalf("u2: %v", err)
	}
	if err := w.Int(I1, -2); err != nil {
		t.Fatalf("i1: %v", err)
	}
	if err := w.Int(I4, math.MinInt32); err != nil {
		t.Fatalf("i4: %v", err)
	}
	if err := w.Uint(X1, 0x81); err != nil {
		t.Fatalf("x1: %v", err)
	}
	want := []byte{0xee, 0x34, 0x12, 0xfe, 0x00, 0x00, 0x00, 0x80, 0x81}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("bytes:\n got %x\nwant %x", w.Bytes(), want)
	}

	r := NewReader(w.Bytes()[1:])
	u, _ := r.Uint(U2)
	i, _ := r.Int(I1)
	j, _ := r.Int(I4)
	x, _ := r.Uint(X1)
	if u != 0x1234 || i != -2 || j != math.MinInt32 || x != 0x81 || r.Remaining() != 0 || r.Offset() != 8 {
		t.Fatalf("read back u=%x i=%d j=%d x=%x", u, i, j, x)
	}
	if _, err := r.Uint(U1); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestWriterOverflow(t *testing.T) {
	w := NewWriter(nil)
	if err := w.Uint(U1, 256); !errors.Is(err, ErrOverflow) {
		t.Fatalf("u1 256: %v", err)
	}
	if err := w.Int(I2, math.MaxInt16+1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("i2 overflow: %v", err)
	}
	if err := w.Int(I2, math.MinInt16-1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("i2 underflow: %v", err)
	}
	if err := w.Uint(U8, math.MaxUint64); err != nil {
		t.Fatalf("u8 max: %v", err)
	}
	if w.Len() != 8 {
		t.Fatalf("failed writes must not append, len=%d", w.Len())
	}
}

func TestCharsAndFloats(t *testing.T) {
	w := NewWriter(nil)
	if err := w.Chars("ROM", 5); err != nil {
		t.Fatalf("chars: %v", err)
	}
	if err := w.Chars("toolong", 3); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
	w.Float(R4, 0.25)
	w.Float(R8, -1e300)
	w.Zero(2)

	r := NewReader(w.Bytes())
	s, _ := r.Chars(5)
	f4, _ := r.Float(R4)
	f8, _ := r.Float(R8)
	if s != "ROM" || f4 != 0.25 || f8 != -1e300 {
		t.Fatalf("read back s=%q f4=%v f8=%v", s, f4, f8)
	}
	if err := r.Skip(2); err != nil || r.Remaining() != 0 {
		t.Fatalf("skip: %v remaining=%d", err, r.Remaining())
	}
}

func TestScaleParse(t *testing.T) {
	cases := map[string]Scale{
		"1e-7":         {Num: 1, Den: 1e7},
		"0.01":         {Num: 1, Den: 100},
		"100":          {Num: 100, Den: 1},
		"1/4294967296": {Num: 1, Den: 4294967296},
		"0.4":          {Num: 0.4, Den: 1},
	}
	for in, want := range cases {
		got, err := ParseScale(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %+v err=%v, want %+v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "x", "0", "-1", "1/0"} {
		if _, err := ParseScale(bad); !errors.Is(err, ErrInvalidScale) {
			t.Fatalf("%q: expected ErrInvalidScale, got %v", bad, err)
		}
	}
}

func TestScaleStored(t *testing.T) {
	s := Scale{Num: 1, Den: 1e7}
	raw, err := s.Stored(float64(math.MaxInt32)/1e7, I4)
	if err != nil || int32(raw) != math.MaxInt32 {
		t.Fatalf("max i4: raw=%d err=%v", int32(raw), err)
	}
	raw, err = (Scale{Num: 1, Den: 4}).Stored(-0.375, I4)
	if err != nil || int64(raw) != -2 {
		t.Fatalf("half away from zero: raw=%d err=%v", int64(raw), err)
	}
	if _, err := s.Stored(214748.3648, I4); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := s.Stored(math.NaN(), I4); !errors.Is(err, ErrOverflow) {
		t.Fatalf("NaN must not encode, got %v", err)
	}
	if _, err := (Scale{Num: 1, Den: 100}).Stored(-0.01, U2); !errors.Is(err, ErrOverflow) {
		t.Fatalf("negative unsigned must overflow, got %v", err)
	}
	if got := s.Apply(-900000000); got != -90 {
		t.Fatalf("apply: %v", got)
	}
	if got := (Scale{}).Apply(7); got != 7 {
		t.Fatalf("identity apply: %v", got)
	}
}

func TestBits(t *testing.T) {
	fix := Range("fixType", 0, 3)
	ok := Flag("gnssFixOK", 3)
	raw := fix.Set(0b1000_0000, 5)
	raw = ok.Set(raw, 1)
	if raw != 0b1000_1101 || fix.Get(raw) != 5 || ok.Get(raw) != 1 {
		t.Fatalf("raw=%08b", raw)
	}
	if Unnamed(raw, []Bit{fix, ok}) != 0b1000_0000 {
		t.Fatalf("unnamed bits lost")
	}
	if err := ValidateBits(X1, []Bit{fix, ok}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := ValidateBits(X1, []Bit{Range("wide", 6, 3)}); !errors.Is(err, ErrBitOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := ValidateBits(X1, []Bit{fix, Flag("clash", 2)}); !errors.Is(err, ErrBitOutOfRange) {
		t.Fatalf("expected overlap, got %v", err)
	}
	if err := ValidateBits(U1, nil); !errors.Is(err, ErrNotBitfield) {
		t.Fatalf("expected ErrNotBitfield, got %v", err)
	}
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("i4,scale=1e-7,since=23")
	if err != nil || tag.Kind != I4 || tag.Scale.Den != 1e7 || tag.Since != 23 {
		t.Fatalf("tag=%+v err=%v", tag, err)
	}
	if tag.Active(14) || !tag.Active(23) || !tag.Active(31) {
		t.Fatalf("since gating wrong")
	}
	tag, err = ParseTag("group,count=NumSvs,max=32")
	if err != nil || !tag.Group || tag.Count != "NumSvs" || tag.Max != 32 {
		t.Fatalf("group tag=%+v err=%v", tag, err)
	}
	if tag, err = ParseTag("-"); err != nil || !tag.Skip {
		t.Fatalf("skip tag=%+v err=%v", tag, err)
	}
	bad := []string{
		"ch",
		"u1,len=2",
		"r4,scale=2",
		"x1,scale=2",
		"u1,count=N",
		"u1,since=27,until=23",
		"u1,since=0",
		"u1,foo=1",
		"u1,scale",
		"reserved",
	}
	for _, raw := range bad {
		if _, err := ParseTag(raw); !errors.Is(err, ErrInvalidTag) {
			t.Fatalf("%q: expected ErrInvalidTag, got %v", raw, err)
		}
	}
}
