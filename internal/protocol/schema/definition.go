package schema

import (
	"github.com/danmuck/ubxwire/internal/protocol/field"
	"github.com/danmuck/ubxwire/internal/protocol/frame"
)

const maxPayloadLen = frame.MaxPayloadLen

// FieldInfo describes one laid-out field. Reserved runs are named "_".
type FieldInfo struct {
	Name   string
	Kind   field.Kind
	Offset int
	// Size is the width of one element; Count is the fixed array length,
	// zero for scalars.
	Size  int
	Count int
	Scale field.Scale
	Bits  []field.Bit
}

// Width is the total byte width of the field.
func (f FieldInfo) Width() int {
	if f.Count > 0 {
		return f.Size * f.Count
	}
	return f.Size
}

// GroupInfo describes the trailing repeated group. Element field offsets
// are relative to the start of each element.
type GroupInfo struct {
	Name       string
	Offset     int
	ElemSize   int
	Fields     []FieldInfo
	CountField string
	Max        int
}

// Definition is the read-only layout of a message under one revision.
type Definition struct {
	Class    uint8
	ID       uint8
	Name     string
	Revision Revision
	Fields   []FieldInfo
	FixedLen int
	Group    *GroupInfo
	MaxLen   int
}

// Key returns the (class, id) pair of the definition.
func (d Definition) Key() Key {
	return Key{Class: d.Class, ID: d.ID}
}

// Definition returns the compiled layout.
func (c *Codec) Definition() Definition {
	d := Definition{
		Class:    c.msg.Class,
		ID:       c.msg.ID,
		Name:     c.msg.Name,
		Revision: c.rev,
		FixedLen: c.fixed,
		MaxLen:   c.MaxLen(),
	}
	for i := range c.nodes {
		d.Fields = append(d.Fields, c.nodes[i].info())
	}
	if g := c.group; g != nil {
		gi := &GroupInfo{Name: g.name, Offset: c.fixed, ElemSize: g.size, Max: g.max}
		if g.count >= 0 {
			gi.CountField = c.nodes[g.count].name
		}
		for i := range g.elem {
			gi.Fields = append(gi.Fields, g.elem[i].info())
		}
		d.Group = gi
	}
	return d
}
