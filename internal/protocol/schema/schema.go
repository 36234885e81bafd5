// Package schema turns declarative message layouts into codecs and keeps
// them in per-revision registries keyed by (class, id).
//
// A message layout is a Go struct whose fields carry `ubx` tags (see
// field.ParseTag). Compile walks the struct once per protocol revision,
// dropping fields gated out of that revision, and the resulting Codec
// interprets the field list to encode and decode payloads.
package schema

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/rs/zerolog/log"
)

// Revision is a protocol version number such as 23 for PROTVER 23.00.
type Revision uint16

// Key identifies a message on the wire.
type Key struct {
	Class uint8
	ID    uint8
}

func (k Key) String() string {
	return fmt.Sprintf("0x%02x/0x%02x", k.Class, k.ID)
}

// Message declares a message type. Type is a zero value (or pointer to
// one) of the tagged struct. Since/Until bound the revisions the message
// exists in; zero is open.
type Message struct {
	Class uint8
	ID    uint8
	Name  string
	Type  any
	Since Revision
	Until Revision
}

func (m Message) Key() Key {
	return Key{Class: m.Class, ID: m.ID}
}

// Active reports whether the message exists under rev.
func (m Message) Active(rev Revision) bool {
	if m.Since != 0 && rev < m.Since {
		return false
	}
	if m.Until != 0 && rev > m.Until {
		return false
	}
	return true
}

// Registry maps (class, id) to codecs for one revision. It is built once and
// never mutated, so it may be shared by any number of streams.
type Registry struct {
	rev    Revision
	byKey  map[Key]*Codec
	byType map[reflect.Type]*Codec
	byName map[string]*Codec
	maxLen int
}

// NewRegistry compiles every message active under rev. Two messages
// claiming the same key, type or name is an error.
func NewRegistry(rev Revision, msgs ...Message) (*Registry, error) {
	log.Debug().Uint16("revision", uint16(rev)).Int("messages", len(msgs)).Msg("schema.NewRegistry")
	r := &Registry{
		rev:    rev,
		byKey:  make(map[Key]*Codec, len(msgs)),
		byType: make(map[reflect.Type]*Codec, len(msgs)),
		byName: make(map[string]*Codec, len(msgs)),
	}
	for _, msg := range msgs {
		if !msg.Active(rev) {
			continue
		}
		c, err := Compile(msg, rev)
		if err != nil {
			log.Error().Err(err).Str("message", msg.Name).Msg("schema.NewRegistry compile failed")
			return nil, err
		}
		if prev, ok := r.byKey[msg.Key()]; ok {
			return nil, fmt.Errorf("%w: %s and %s both claim %s", ErrDuplicateMessage, prev.msg.Name, msg.Name, msg.Key())
		}
		if prev, ok := r.byType[c.typ]; ok {
			return nil, fmt.Errorf("%w: %s and %s share type %s", ErrDuplicateMessage, prev.msg.Name, msg.Name, c.typ)
		}
		if msg.Name != "" {
			if _, ok := r.byName[msg.Name]; ok {
				return nil, fmt.Errorf("%w: name %s", ErrDuplicateMessage, msg.Name)
			}
			r.byName[msg.Name] = c
		}
		r.byKey[msg.Key()] = c
		r.byType[c.typ] = c
		if n := c.MaxLen(); n > r.maxLen {
			r.maxLen = n
		}
	}
	log.Debug().Uint16("revision", uint16(rev)).Int("compiled", len(r.byKey)).Int("max_payload_len", r.maxLen).Msg("schema.NewRegistry ok")
	return r, nil
}

func (r *Registry) Revision() Revision { return r.rev }

// Len returns the number of registered messages.
func (r *Registry) Len() int { return len(r.byKey) }

// MaxPayloadLen is the largest payload any registered message admits.
func (r *Registry) MaxPayloadLen() int { return r.maxLen }

func (r *Registry) Lookup(class, id uint8) (*Codec, bool) {
	c, ok := r.byKey[Key{Class: class, ID: id}]
	return c, ok
}

func (r *Registry) LookupName(name string) (*Codec, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// LookupType finds the codec for a message value or pointer to one.
func (r *Registry) LookupType(v any) (*Codec, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c, ok := r.byType[t]
	return c, ok
}

// Definitions lists every registered layout ordered by key.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.byKey))
	for _, c := range r.byKey {
		out = append(out, c.Definition())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Decode turns a validated frame payload into a Packet. Keys the registry
// does not know are passed through as unrecognized packets, not errors.
func (r *Registry) Decode(class, id uint8, payload []byte) (Packet, error) {
	c, ok := r.Lookup(class, id)
	if !ok {
		return Packet{Class: class, ID: id, Payload: append([]byte(nil), payload...)}, nil
	}
	body, err := c.Decode(payload)
	if err != nil {
		return Packet{Class: class, ID: id, Name: c.msg.Name}, err
	}
	return Packet{Class: class, ID: id, Name: c.msg.Name, Body: body, codec: c}, nil
}

// Encode returns the key and payload of a registered message value.
func (r *Registry) Encode(body any) (Key, []byte, error) {
	c, ok := r.LookupType(body)
	if !ok {
		return Key{}, nil, fmt.Errorf("%w: %T under revision %d", ErrUnknownMessage, body, r.rev)
	}
	payload, err := c.Encode(body)
	if err != nil {
		return Key{}, nil, err
	}
	return c.msg.Key(), payload, nil
}

// EncodePacket encodes p.Body, or passes p.Payload through for unrecognized
// packets.
func (r *Registry) EncodePacket(p Packet) (Key, []byte, error) {
	if p.Body == nil {
		return p.Key(), append([]byte(nil), p.Payload...), nil
	}
	key, payload, err := r.Encode(p.Body)
	if err != nil {
		return Key{}, nil, err
	}
	if key != p.Key() {
		return Key{}, nil, fmt.Errorf("%w: body is %s, packet says %s", ErrTypeMismatch, key, p.Key())
	}
	return key, payload, nil
}
