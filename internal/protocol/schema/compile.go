package schema

import (
	"fmt"
	"math"
	"reflect"

	"github.com/danmuck/ubxwire/internal/protocol/field"
)

// node is one laid-out struct field.
type node struct {
	name   string
	index  int
	kind   field.Kind
	scale  field.Scale
	size   int
	count  int
	offset int
	bits   []field.Bit
}

func (n *node) width() int {
	if n.count > 0 {
		return n.size * n.count
	}
	return n.size
}

func (n *node) info() FieldInfo {
	name := n.name
	if n.kind == field.Reserved {
		name = "_"
	}
	return FieldInfo{
		Name:   name,
		Kind:   n.kind,
		Offset: n.offset,
		Size:   n.size,
		Count:  n.count,
		Scale:  n.scale,
		Bits:   n.bits,
	}
}

// group is the trailing repeated section of a message.
type group struct {
	name  string
	index int
	typ   reflect.Type
	elem  []node
	size  int
	// count indexes the node holding the element count; -1 infers the
	// count from the remaining payload length.
	count int
	max   int
}

var bitNamerType = reflect.TypeFor[field.BitNamer]()

// layout walks a struct type once for revision rev. Fields without a `ubx`
// tag, tagged "-", or gated out of rev are not part of the layout.
func layout(t reflect.Type, rev Revision, allowGroup bool) ([]node, *group, error) {
	if t.Kind() != reflect.Struct {
		return nil, nil, &LayoutError{Type: t.String(), Reason: "not a struct"}
	}
	var (
		nodes  []node
		grp    *group
		offset int
	)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		raw, ok := sf.Tag.Lookup(field.TagKey)
		if !ok {
			continue
		}
		tag, err := field.ParseTag(raw)
		if err != nil {
			return nil, nil, &LayoutError{Type: t.String(), Field: sf.Name, Reason: err.Error()}
		}
		if tag.Skip || !tag.Active(uint16(rev)) {
			continue
		}
		if grp != nil {
			return nil, nil, &LayoutError{Type: t.String(), Field: sf.Name, Reason: "field after repeated group"}
		}
		if tag.Group {
			if !allowGroup {
				return nil, nil, &LayoutError{Type: t.String(), Field: sf.Name, Reason: "nested repeated group"}
			}
			grp, err = compileGroup(t, sf, i, tag, nodes, rev)
			if err != nil {
				return nil, nil, err
			}
			continue
		}
		n, err := compileNode(t, sf, i, tag)
		if err != nil {
			return nil, nil, err
		}
		n.offset = offset
		offset += n.width()
		nodes = append(nodes, n)
	}
	return nodes, grp, nil
}

func compileNode(owner reflect.Type, sf reflect.StructField, index int, tag field.Tag) (node, error) {
	fail := func(format string, args ...any) (node, error) {
		return node{}, &LayoutError{Type: owner.String(), Field: sf.Name, Reason: fmt.Sprintf(format, args...)}
	}
	n := node{name: sf.Name, index: index, kind: tag.Kind, scale: tag.Scale, size: tag.Kind.Size()}
	if tag.Kind == field.Reserved {
		if sf.Type.Kind() != reflect.Array || sf.Type.Elem().Kind() != reflect.Uint8 || sf.Type.Len() != tag.Len {
			return fail("reserved needs [%d]byte, have %s", tag.Len, sf.Type)
		}
		n.size = tag.Len
		return n, nil
	}
	if !sf.IsExported() {
		return fail("unexported field")
	}
	if tag.Kind == field.CH {
		n.size = tag.Len
	}
	typ := sf.Type
	if typ.Kind() == reflect.Array {
		if typ.Len() == 0 {
			return fail("zero length array")
		}
		n.count = typ.Len()
		typ = typ.Elem()
	}
	if err := checkType(tag, typ); err != nil {
		return fail("%v", err)
	}
	if tag.Kind.Bitfield() && typ.Implements(bitNamerType) {
		n.bits = reflect.Zero(typ).Interface().(field.BitNamer).Bits()
		if err := field.ValidateBits(tag.Kind, n.bits); err != nil {
			return fail("%v", err)
		}
	}
	return n, nil
}

// checkType pairs a wire kind with the Go type holding it.
func checkType(tag field.Tag, t reflect.Type) error {
	k := tag.Kind
	switch {
	case k == field.CH:
		if t.Kind() == reflect.String {
			return nil
		}
	case !tag.Scale.IsZero():
		if t.Kind() == reflect.Float64 {
			return nil
		}
		return fmt.Errorf("scaled %s needs float64, have %s", k, t)
	case k == field.R4:
		if t.Kind() == reflect.Float32 {
			return nil
		}
	case k == field.R8:
		if t.Kind() == reflect.Float64 {
			return nil
		}
	case k.Signed():
		switch t.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if int(t.Size()) == k.Size() {
				return nil
			}
		}
	case k.Unsigned(), k.Bitfield():
		switch t.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if int(t.Size()) == k.Size() {
				return nil
			}
		}
	}
	return fmt.Errorf("kind %s cannot be stored in %s", k, t)
}

func compileGroup(owner reflect.Type, sf reflect.StructField, index int, tag field.Tag, prior []node, rev Revision) (*group, error) {
	fail := func(format string, args ...any) (*group, error) {
		return nil, &LayoutError{Type: owner.String(), Field: sf.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if !sf.IsExported() {
		return fail("unexported field")
	}
	if sf.Type.Kind() != reflect.Slice || sf.Type.Elem().Kind() != reflect.Struct {
		return fail("repeated group needs a slice of structs, have %s", sf.Type)
	}
	elem, _, err := layout(sf.Type.Elem(), rev, false)
	if err != nil {
		return nil, err
	}
	g := &group{name: sf.Name, index: index, typ: sf.Type.Elem(), elem: elem, count: -1, max: tag.Max}
	for i := range elem {
		g.size += elem[i].width()
	}
	if g.size == 0 {
		return fail("repeated group element has no fields")
	}
	if tag.Count != "" {
		for i := range prior {
			if prior[i].name != tag.Count {
				continue
			}
			c := prior[i]
			if !(c.kind.Unsigned() || c.kind.Signed()) || !c.scale.IsZero() || c.count > 0 {
				return fail("count field %s must be a plain integer", tag.Count)
			}
			g.count = i
			if g.max == 0 {
				g.max = maxCount(c.kind)
			}
			break
		}
		if g.count < 0 {
			return fail("count field %s not laid out before group", tag.Count)
		}
	}
	return g, nil
}

// maxCount is the largest element count a count field of kind k can state,
// capped by what a u16 payload length could ever hold.
func maxCount(k field.Kind) int {
	var n uint64
	if k.Signed() {
		n = 1<<(k.Bits()-1) - 1
	} else {
		n = 1<<k.Bits() - 1
	}
	if k.Bits() >= 64 || n > math.MaxUint16 {
		return math.MaxUint16
	}
	return int(n)
}
