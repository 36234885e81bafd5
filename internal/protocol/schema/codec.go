package schema

import (
	"fmt"
	"math"
	"reflect"

	"github.com/danmuck/ubxwire/internal/protocol/field"
)

// Codec encodes and decodes one message type under one revision. It is
// derived entirely from the message's tagged struct; nothing about a
// specific message is written by hand. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	msg   Message
	rev   Revision
	typ   reflect.Type
	nodes []node
	group *group
	fixed int
}

// Compile derives the codec of msg for revision rev.
func Compile(msg Message, rev Revision) (*Codec, error) {
	if msg.Type == nil {
		return nil, &LayoutError{Type: msg.Name, Reason: "nil type"}
	}
	typ := reflect.TypeOf(msg.Type)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	nodes, grp, err := layout(typ, rev, true)
	if err != nil {
		return nil, err
	}
	c := &Codec{msg: msg, rev: rev, typ: typ, nodes: nodes, group: grp}
	for i := range nodes {
		c.fixed += nodes[i].width()
	}
	if c.MaxLen() > maxPayloadLen {
		return nil, &LayoutError{Type: typ.String(), Reason: fmt.Sprintf("max length %d exceeds u16 length field", c.MaxLen())}
	}
	return c, nil
}

// MustCompile is like Compile but panics on a layout error.
func MustCompile(msg Message, rev Revision) *Codec {
	c, err := Compile(msg, rev)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Codec) Message() Message   { return c.msg }
func (c *Codec) Revision() Revision { return c.rev }
func (c *Codec) Type() reflect.Type { return c.typ }

// FixedLen is the byte length of everything before the repeated group.
func (c *Codec) FixedLen() int { return c.fixed }

// MaxLen is the largest payload the definition admits.
func (c *Codec) MaxLen() int {
	if c.group == nil {
		return c.fixed
	}
	if c.group.max == 0 {
		return maxPayloadLen
	}
	return c.fixed + c.group.max*c.group.size
}

// Decode validates payload against the layout and returns a pointer to a
// new message value. The value shares no memory with payload.
func (c *Codec) Decode(payload []byte) (any, error) {
	v := reflect.New(c.typ)
	if err := c.decode(v.Elem(), payload); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// DecodeInto decodes into dst, a non-nil pointer to the message type. dst
// is left untouched when decoding fails.
func (c *Codec) DecodeInto(dst any, payload []byte) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != c.typ {
		return fmt.Errorf("%w: %T for %s", ErrTypeMismatch, dst, c.msg.Name)
	}
	tmp := reflect.New(c.typ).Elem()
	if err := c.decode(tmp, payload); err != nil {
		return err
	}
	rv.Elem().Set(tmp)
	return nil
}

func (c *Codec) decode(v reflect.Value, payload []byte) error {
	if err := c.checkLen(len(payload)); err != nil {
		return err
	}
	r := field.NewReader(payload)
	for i := range c.nodes {
		n := &c.nodes[i]
		if err := decodeNode(r, n, v); err != nil {
			return c.fieldErr(ErrFieldDecode, n.name, err)
		}
	}
	if g := c.group; g != nil {
		remaining := r.Remaining()
		count := remaining / g.size
		if g.count >= 0 {
			n, ok := countOf(v.Field(c.nodes[g.count].index))
			if !ok || n > remaining/g.size {
				return &LengthError{Message: c.msg.Name, Want: c.fixed, Stride: g.size, Got: len(payload)}
			}
			count = n
			if count*g.size != remaining {
				return &LengthError{Message: c.msg.Name, Want: c.fixed + count*g.size, Got: len(payload)}
			}
		}
		if g.max > 0 && count > g.max {
			return c.fieldErr(ErrFieldDecode, g.name, fmt.Errorf("%w: %d elements, max %d", ErrCountMismatch, count, g.max))
		}
		items := reflect.MakeSlice(reflect.SliceOf(g.typ), count, count)
		for j := 0; j < count; j++ {
			item := items.Index(j)
			for k := range g.elem {
				n := &g.elem[k]
				if err := decodeNode(r, n, item); err != nil {
					return c.fieldErr(ErrFieldDecode, fmt.Sprintf("%s[%d].%s", g.name, j, n.name), err)
				}
			}
		}
		v.Field(g.index).Set(items)
	}
	if r.Remaining() != 0 {
		return c.lengthErr(len(payload))
	}
	return nil
}

func (c *Codec) checkLen(got int) error {
	g := c.group
	switch {
	case g == nil && got != c.fixed:
		return c.lengthErr(got)
	case g != nil && got < c.fixed:
		return c.lengthErr(got)
	case g != nil && g.count < 0 && (got-c.fixed)%g.size != 0:
		return c.lengthErr(got)
	}
	return nil
}

func (c *Codec) lengthErr(got int) error {
	e := &LengthError{Message: c.msg.Name, Want: c.fixed, Got: got}
	if c.group != nil {
		e.Stride = c.group.size
	}
	return e
}

func (c *Codec) fieldErr(op error, name string, err error) error {
	return &FieldError{Message: c.msg.Name, Field: name, Op: op, Err: err}
}

func decodeNode(r *field.Reader, n *node, parent reflect.Value) error {
	if n.kind == field.Reserved {
		return r.Skip(n.size)
	}
	fv := parent.Field(n.index)
	if n.count == 0 {
		return decodeScalar(r, n, fv)
	}
	for i := 0; i < n.count; i++ {
		if err := decodeScalar(r, n, fv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func decodeScalar(r *field.Reader, n *node, fv reflect.Value) error {
	switch {
	case n.kind == field.CH:
		s, err := r.Chars(n.size)
		if err != nil {
			return err
		}
		fv.SetString(s)
	case n.kind.Float():
		f, err := r.Float(n.kind)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case n.kind.Signed():
		x, err := r.Int(n.kind)
		if err != nil {
			return err
		}
		if !n.scale.IsZero() {
			fv.SetFloat(n.scale.Apply(float64(x)))
		} else {
			fv.SetInt(x)
		}
	default:
		x, err := r.Uint(n.kind)
		if err != nil {
			return err
		}
		if !n.scale.IsZero() {
			fv.SetFloat(n.scale.Apply(float64(x)))
		} else {
			fv.SetUint(x)
		}
	}
	return nil
}

// Encode returns the payload bytes of v, a message value or pointer to one.
func (c *Codec) Encode(v any) ([]byte, error) {
	return c.Append(nil, v)
}

// Append encodes v onto dst. On error dst is returned unextended.
func (c *Codec) Append(dst []byte, v any) ([]byte, error) {
	rv, err := c.value(v)
	if err != nil {
		return dst, err
	}
	w := field.NewWriter(dst)
	for i := range c.nodes {
		n := &c.nodes[i]
		if err := encodeNode(w, n, rv); err != nil {
			return dst, c.fieldErr(ErrFieldEncode, n.name, err)
		}
	}
	if g := c.group; g != nil {
		items := rv.Field(g.index)
		if g.max > 0 && items.Len() > g.max {
			return dst, c.fieldErr(ErrFieldEncode, g.name,
				fmt.Errorf("%w: %d elements, max %d", ErrCountMismatch, items.Len(), g.max))
		}
		if g.count >= 0 {
			cn := &c.nodes[g.count]
			if want, ok := countOf(rv.Field(cn.index)); !ok || want != items.Len() {
				return dst, c.fieldErr(ErrFieldEncode, g.name,
					fmt.Errorf("%w: %s=%v, %d elements", ErrCountMismatch, cn.name, rv.Field(cn.index), items.Len()))
			}
		}
		for j := 0; j < items.Len(); j++ {
			item := items.Index(j)
			for k := range g.elem {
				n := &g.elem[k]
				if err := encodeNode(w, n, item); err != nil {
					return dst, c.fieldErr(ErrFieldEncode, fmt.Sprintf("%s[%d].%s", g.name, j, n.name), err)
				}
			}
		}
	}
	return w.Bytes(), nil
}

func (c *Codec) value(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %T for %s", ErrTypeMismatch, v, c.msg.Name)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != c.typ {
		return reflect.Value{}, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, c.msg.Name)
	}
	return rv, nil
}

func encodeNode(w *field.Writer, n *node, parent reflect.Value) error {
	if n.kind == field.Reserved {
		w.Zero(n.size)
		return nil
	}
	fv := parent.Field(n.index)
	if n.count == 0 {
		return encodeScalar(w, n, fv)
	}
	for i := 0; i < n.count; i++ {
		if err := encodeScalar(w, n, fv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func encodeScalar(w *field.Writer, n *node, fv reflect.Value) error {
	switch {
	case n.kind == field.CH:
		return w.Chars(fv.String(), n.size)
	case n.kind.Float():
		w.Float(n.kind, fv.Float())
		return nil
	case !n.scale.IsZero():
		raw, err := n.scale.Stored(fv.Float(), n.kind)
		if err != nil {
			return err
		}
		if n.kind.Signed() {
			return w.Int(n.kind, int64(raw))
		}
		return w.Uint(n.kind, raw)
	case n.kind.Signed():
		return w.Int(n.kind, fv.Int())
	default:
		return w.Uint(n.kind, fv.Uint())
	}
}

// countOf reads a count field. ok is false for values no slice can have.
func countOf(v reflect.Value) (int, bool) {
	if v.CanInt() {
		n := v.Int()
		return int(n), n >= 0 && n <= math.MaxInt
	}
	n := v.Uint()
	return int(n), n <= math.MaxInt
}
