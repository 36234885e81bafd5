package field

import (
	"fmt"
	"strconv"
	"strings"
)

// TagKey is the struct tag key message layouts are declared under.
const TagKey = "ubx"

// Tag is a parsed `ubx` struct tag.
//
//	ubx:"<kind>[,scale=<s>][,len=<n>][,since=<rev>][,until=<rev>]"
//	ubx:"group[,count=<Field>][,max=<n>][,since=<rev>][,until=<rev>]"
//	ubx:"-"
//
// len is the byte length of a ch or reserved run. since/until bound the
// protocol revisions (inclusive) the field is laid out in; zero means open.
type Tag struct {
	Kind  Kind
	Group bool
	Skip  bool
	Scale Scale
	Len   int
	Since uint16
	Until uint16
	Count string
	Max   int
}

// ParseTag parses the value of a `ubx` struct tag.
func ParseTag(raw string) (Tag, error) {
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		return Tag{Skip: true}, nil
	}
	parts := strings.Split(raw, ",")
	var t Tag
	head := strings.TrimSpace(parts[0])
	if head == "group" {
		t.Group = true
	} else {
		k, err := ParseKind(head)
		if err != nil {
			return Tag{}, err
		}
		t.Kind = k
	}
	for _, opt := range parts[1:] {
		key, val, ok := strings.Cut(strings.TrimSpace(opt), "=")
		if !ok {
			return Tag{}, fmt.Errorf("%w: option %q in %q", ErrInvalidTag, opt, raw)
		}
		var err error
		switch key {
		case "scale":
			t.Scale, err = ParseScale(val)
		case "len":
			t.Len, err = parsePositive(val)
		case "max":
			t.Max, err = parsePositive(val)
		case "since":
			t.Since, err = parseRevision(val)
		case "until":
			t.Until, err = parseRevision(val)
		case "count":
			t.Count = strings.TrimSpace(val)
			if t.Count == "" {
				err = fmt.Errorf("%w: empty count in %q", ErrInvalidTag, raw)
			}
		default:
			err = fmt.Errorf("%w: unknown option %q in %q", ErrInvalidTag, key, raw)
		}
		if err != nil {
			return Tag{}, err
		}
	}
	return t, t.validate(raw)
}

func (t Tag) validate(raw string) error {
	if !t.Scale.IsZero() && !t.Kind.Signed() && !t.Kind.Unsigned() {
		return fmt.Errorf("%w: scale on %s in %q", ErrInvalidTag, t.Kind, raw)
	}
	if (t.Kind == CH || t.Kind == Reserved) && t.Len == 0 {
		return fmt.Errorf("%w: %s needs len in %q", ErrInvalidTag, t.Kind, raw)
	}
	if t.Len != 0 && t.Kind != CH && t.Kind != Reserved {
		return fmt.Errorf("%w: len on %s in %q", ErrInvalidTag, t.Kind, raw)
	}
	if !t.Group && (t.Count != "" || t.Max != 0) {
		return fmt.Errorf("%w: count/max outside group in %q", ErrInvalidTag, raw)
	}
	if t.Since != 0 && t.Until != 0 && t.Since > t.Until {
		return fmt.Errorf("%w: since %d after until %d in %q", ErrInvalidTag, t.Since, t.Until, raw)
	}
	return nil
}

// Active reports whether the tag applies under revision rev.
func (t Tag) Active(rev uint16) bool {
	return InRange(rev, t.Since, t.Until)
}

// InRange reports whether rev lies within [since, until]; zero bounds are open.
func InRange(rev, since, until uint16) bool {
	if since != 0 && rev < since {
		return false
	}
	if until != 0 && rev > until {
		return false
	}
	return true
}

func parsePositive(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: expected positive integer, got %q", ErrInvalidTag, v)
	}
	return n, nil
}

func parseRevision(v string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: invalid revision %q", ErrInvalidTag, v)
	}
	return uint16(n), nil
}
