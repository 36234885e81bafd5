package protocol

import (
	"fmt"
	"io"

	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
)

// Encode returns the complete frame for body, a registered message value or
// a pointer to one.
func Encode(reg *schema.Registry, body any) ([]byte, error) {
	return Append(nil, reg, body)
}

// Append encodes the frame for body onto dst. On error dst is returned
// unextended.
func Append(dst []byte, reg *schema.Registry, body any) ([]byte, error) {
	key, payload, err := reg.Encode(body)
	if err != nil {
		return dst, err
	}
	return frame.Append(dst, frame.Frame{Class: key.Class, ID: key.ID, Payload: payload})
}

// EncodePacket frames a packet. Unrecognized packets are passed through
// with their raw payload.
func EncodePacket(reg *schema.Registry, p schema.Packet) ([]byte, error) {
	key, payload, err := reg.EncodePacket(p)
	if err != nil {
		return nil, err
	}
	return frame.Encode(frame.Frame{Class: key.Class, ID: key.ID, Payload: payload})
}

// Poll returns the empty-payload frame that asks the receiver to emit the
// message (class, id) once.
func Poll(class, id uint8) []byte {
	b, _ := frame.Encode(frame.Frame{Class: class, ID: id})
	return b
}

// PollName is Poll for a message looked up by name, such as "MON-VER".
func PollName(reg *schema.Registry, name string) ([]byte, error) {
	c, ok := reg.LookupName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q under revision %d", schema.ErrUnknownMessage, name, reg.Revision())
	}
	msg := c.Message()
	return Poll(msg.Class, msg.ID), nil
}

// Encoder writes framed messages to w. Each message is one Write call.
type Encoder struct {
	w   io.Writer
	reg *schema.Registry
	buf []byte
}

func NewEncoder(w io.Writer, reg *schema.Registry) *Encoder {
	return &Encoder{w: w, reg: reg}
}

// Encode frames body and writes it.
func (e *Encoder) Encode(body any) error {
	buf, err := Append(e.buf[:0], e.reg, body)
	if err != nil {
		return err
	}
	e.buf = buf
	_, err = e.w.Write(buf)
	return err
}

// Poll writes a poll request for (class, id).
func (e *Encoder) Poll(class, id uint8) error {
	_, err := e.w.Write(Poll(class, id))
	return err
}
