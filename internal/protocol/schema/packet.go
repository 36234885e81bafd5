package schema

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/danmuck/ubxwire/internal/protocol/field"
)

// Packet is a decoded message. Body points to the message struct; it is nil
// for unrecognized packets, which carry a private copy of their raw Payload
// instead.
type Packet struct {
	Class   uint8
	ID      uint8
	Name    string
	Body    any
	Payload []byte

	codec *Codec
}

func (p Packet) Key() Key {
	return Key{Class: p.Class, ID: p.ID}
}

// Recognized reports whether the registry had a definition for the packet.
func (p Packet) Recognized() bool {
	return p.Body != nil
}

func (p Packet) String() string {
	if !p.Recognized() {
		return fmt.Sprintf("unrecognized(%s len=%d)", p.Key(), len(p.Payload))
	}
	return fmt.Sprintf("%s(%s)", p.Name, p.Key())
}

// Values returns the generic structured form of the body: field name to
// value, bitfields as {"raw": n, "<bit>": v}, arrays as []any and the
// repeated group as []map[string]any. Reserved padding is omitted.
func (p Packet) Values() (map[string]any, error) {
	if p.codec == nil {
		return nil, fmt.Errorf("%w: %s has no codec", ErrUnknownMessage, p.Key())
	}
	return p.codec.Values(p.Body)
}

// MarshalJSON renders the packet with its generic field values.
func (p Packet) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"class": p.Class,
		"id":    p.ID,
	}
	if !p.Recognized() || p.codec == nil {
		out["payload"] = hex.EncodeToString(p.Payload)
		return json.Marshal(out)
	}
	fields, err := p.Values()
	if err != nil {
		return nil, err
	}
	out["name"] = p.Name
	out["fields"] = fields
	return json.Marshal(out)
}

// Values is the generic structured form of v under this codec.
func (c *Codec) Values(v any) (map[string]any, error) {
	rv, err := c.value(v)
	if err != nil {
		return nil, err
	}
	out := nodeValues(c.nodes, rv)
	if g := c.group; g != nil {
		items := rv.Field(g.index)
		list := make([]map[string]any, items.Len())
		for j := range list {
			list[j] = nodeValues(g.elem, items.Index(j))
		}
		out[g.name] = list
	}
	return out, nil
}

func nodeValues(nodes []node, parent reflect.Value) map[string]any {
	out := make(map[string]any, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.kind == field.Reserved {
			continue
		}
		fv := parent.Field(n.index)
		if n.count == 0 {
			out[n.name] = scalarValue(n, fv)
			continue
		}
		list := make([]any, n.count)
		for j := range list {
			list[j] = scalarValue(n, fv.Index(j))
		}
		out[n.name] = list
	}
	return out
}

func scalarValue(n *node, fv reflect.Value) any {
	switch {
	case n.kind == field.CH:
		return fv.String()
	case n.kind.Float(), !n.scale.IsZero():
		f := fv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			// JSON has no literal for these.
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	case n.kind.Signed():
		return fv.Int()
	case n.kind.Bitfield():
		raw := fv.Uint()
		flags := map[string]any{"raw": raw}
		for _, b := range n.bits {
			if b.Width == 1 {
				flags[b.Name] = b.Get(raw) == 1
			} else {
				flags[b.Name] = b.Get(raw)
			}
		}
		return flags
	default:
		return fv.Uint()
	}
}
