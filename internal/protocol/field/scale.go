package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale is a rational multiplier Num/Den applied to a stored integer.
// The zero Scale is the identity.
type Scale struct {
	Num float64
	Den float64
}

// ParseScale accepts "1e-7", "0.01", "100" or "1/4294967296".
// Decimal scales below one are normalised to 1/Den when Den is integral so
// that decoding divides by an exact integer.
func ParseScale(s string) (Scale, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return Scale{}, fmt.Errorf("%w: %q", ErrInvalidScale, s)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil {
			return Scale{}, fmt.Errorf("%w: %q", ErrInvalidScale, s)
		}
		return newScale(n, d, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Scale{}, fmt.Errorf("%w: %q", ErrInvalidScale, s)
	}
	if f > 0 && f < 1 {
		inv := 1 / f
		if r := math.Round(inv); math.Abs(inv-r) <= 1e-9*r {
			return newScale(1, r, s)
		}
	}
	return newScale(f, 1, s)
}

func newScale(num, den float64, raw string) (Scale, error) {
	if num <= 0 || den <= 0 || math.IsInf(num, 0) || math.IsInf(den, 0) || math.IsNaN(num) || math.IsNaN(den) {
		return Scale{}, fmt.Errorf("%w: %q", ErrInvalidScale, raw)
	}
	return Scale{Num: num, Den: den}, nil
}

// IsZero reports whether s is the identity scale.
func (s Scale) IsZero() bool {
	return s.Num == 0 && s.Den == 0
}

// Factor returns Num/Den as a single float.
func (s Scale) Factor() float64 {
	if s.IsZero() {
		return 1
	}
	return s.Num / s.Den
}

// Apply converts a stored integer into the exposed value.
func (s Scale) Apply(stored float64) float64 {
	if s.IsZero() {
		return stored
	}
	if s.Num == 1 {
		return stored / s.Den
	}
	return stored * s.Num / s.Den
}

// Stored converts an exposed value back to the nearest stored integer of
// kind k, rounding half away from zero. The result is the raw bit pattern
// ready for Writer.Uint.
func (s Scale) Stored(v float64, k Kind) (uint64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrOverflow, v)
	}
	x := v
	if !s.IsZero() {
		x = v * s.Den / s.Num
	}
	r := math.Round(x)
	bits := k.Bits()
	if k.Signed() {
		lo := -math.Ldexp(1, int(bits)-1)
		hi := math.Ldexp(1, int(bits)-1)
		if r < lo || r >= hi {
			return 0, fmt.Errorf("%w: %v scales to %v, outside %s", ErrOverflow, v, r, k)
		}
		return uint64(int64(r)), nil
	}
	if r < 0 || r >= math.Ldexp(1, int(bits)) {
		return 0, fmt.Errorf("%w: %v scales to %v, outside %s", ErrOverflow, v, r, k)
	}
	return uint64(r), nil
}

func (s Scale) String() string {
	if s.IsZero() {
		return "1"
	}
	if s.Num == 1 {
		return "1/" + strconv.FormatFloat(s.Den, 'g', -1, 64)
	}
	if s.Den == 1 {
		return strconv.FormatFloat(s.Num, 'g', -1, 64)
	}
	return strconv.FormatFloat(s.Num, 'g', -1, 64) + "/" + strconv.FormatFloat(s.Den, 'g', -1, 64)
}
