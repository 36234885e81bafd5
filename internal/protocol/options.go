package protocol

import (
	"fmt"
	"strings"

	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AllocMode selects how the parser stores payload bytes.
type AllocMode uint8

const (
	// AllocFixed parses into one buffer sized up front. No allocation
	// happens while parsing.
	AllocFixed AllocMode = iota
	// AllocDynamic grows the buffer on demand up to MaxPayloadLen.
	AllocDynamic
)

func (m AllocMode) String() string {
	switch m {
	case AllocFixed:
		return "fixed"
	case AllocDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("alloc_mode(%d)", uint8(m))
	}
}

// ParseAllocMode accepts "fixed" or "dynamic".
func ParseAllocMode(s string) (AllocMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return AllocFixed, nil
	case "dynamic":
		return AllocDynamic, nil
	default:
		return AllocFixed, fmt.Errorf("protocol: unknown alloc mode %q", s)
	}
}

const defaultReadSize = 512

// Options configures a Stream or Decoder.
type Options struct {
	// MaxPayloadLen bounds accepted frames; longer declared lengths are
	// rejected before any payload byte is stored.
	MaxPayloadLen int
	AllocMode     AllocMode
	// Storage, when set, backs the fixed buffer and its length replaces
	// MaxPayloadLen as the capacity.
	Storage []byte
	// ReadSize is the Decoder's read chunk.
	ReadSize int
	Observer Observer
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// DefaultOptions sizes the parser for the largest message reg admits, and
// never below frame.DefaultMaxPayloadLen.
func DefaultOptions(reg *schema.Registry) Options {
	n := frame.DefaultMaxPayloadLen
	if reg != nil && reg.MaxPayloadLen() > n {
		n = reg.MaxPayloadLen()
	}
	return Options{MaxPayloadLen: n, AllocMode: AllocFixed, ReadSize: defaultReadSize}
}

func (o Options) normalize(reg *schema.Registry) Options {
	def := DefaultOptions(reg)
	if o.MaxPayloadLen <= 0 {
		o.MaxPayloadLen = def.MaxPayloadLen
	}
	if o.MaxPayloadLen > frame.MaxPayloadLen {
		o.MaxPayloadLen = frame.MaxPayloadLen
	}
	if o.ReadSize <= 0 {
		o.ReadSize = def.ReadSize
	}
	if o.Logger == nil {
		o.Logger = &log.Logger
	}
	return o
}

func (o Options) newParser() *frame.Parser {
	limits := frame.Limits{MaxPayloadLen: o.MaxPayloadLen}
	if o.AllocMode == AllocDynamic {
		return frame.NewParser(frame.NewGrowBuffer(o.MaxPayloadLen), limits)
	}
	storage := o.Storage
	if storage == nil {
		storage = make([]byte, o.MaxPayloadLen)
	} else {
		limits.MaxPayloadLen = len(storage)
	}
	return frame.NewParser(frame.NewFixedBuffer(storage), limits)
}
