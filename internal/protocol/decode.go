package protocol

import (
	"errors"
	"io"
	"iter"

	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
	"github.com/rs/zerolog"
)

// Stream decodes packets from bytes pushed into it. It keeps the partial
// frame between Feed calls, so input may be split anywhere. A Stream serves
// one byte source and is not safe for concurrent use; the registry may be
// shared.
type Stream struct {
	reg    *schema.Registry
	parser *frame.Parser
	obs    Observer
	log    *zerolog.Logger
}

// NewStream builds a stream over reg. Zero-valued options take the values
// of DefaultOptions(reg).
func NewStream(reg *schema.Registry, opts Options) *Stream {
	opts = opts.normalize(reg)
	return &Stream{
		reg:    reg,
		parser: opts.newParser(),
		obs:    opts.Observer,
		log:    opts.Logger,
	}
}

func (s *Stream) Registry() *schema.Registry { return s.reg }

// Stats returns the parser counters.
func (s *Stream) Stats() frame.Stats { return s.parser.Stats() }

// Limit is the largest payload the stream accepts.
func (s *Stream) Limit() int { return s.parser.Limit() }

// Reset drops any partial frame.
func (s *Stream) Reset() { s.parser.Reset() }

// Feed yields one (packet, nil) per decoded frame and one (packet, err) per
// rejected or undecodable frame, in input order. Errors are recoverable: the
// stream continues with the next byte. Breaking out of the loop leaves the
// bytes after the last yielded frame unconsumed.
func (s *Stream) Feed(data []byte) iter.Seq2[schema.Packet, error] {
	return func(yield func(schema.Packet, error) bool) {
		for f, err := range s.parser.Parse(data) {
			var pkt schema.Packet
			if err != nil {
				s.rejected(err)
			} else {
				pkt, err = s.decode(f)
			}
			if !yield(pkt, err) {
				return
			}
		}
	}
}

func (s *Stream) decode(f frame.Frame) (schema.Packet, error) {
	pkt, err := s.reg.Decode(f.Class, f.ID, f.Payload)
	ev := Event{Class: f.Class, ID: f.ID, Name: pkt.Name, Len: len(f.Payload), Err: err}
	switch {
	case err != nil:
		ev.Kind = EventDecodeFailed
		s.log.Debug().Err(err).
			Uint8("class", f.Class).
			Uint8("id", f.ID).
			Int("len", len(f.Payload)).
			Msg("protocol.Stream decode failed")
	case !pkt.Recognized():
		ev.Kind = EventUnrecognized
		s.log.Trace().Uint8("class", f.Class).Uint8("id", f.ID).Int("len", len(f.Payload)).Msg("protocol.Stream unrecognized")
	default:
		ev.Kind = EventAccepted
	}
	s.observe(ev)
	return pkt, err
}

func (s *Stream) rejected(err error) {
	ev := Event{Kind: EventRejected, Err: err}
	var re *frame.RejectError
	if errors.As(err, &re) {
		ev.Class, ev.ID, ev.Len = re.Class, re.ID, int(re.Length)
	}
	s.log.Debug().Err(err).Uint8("class", ev.Class).Uint8("id", ev.ID).Int("len", ev.Len).Msg("protocol.Stream frame rejected")
	s.observe(ev)
}

func (s *Stream) observe(ev Event) {
	if s.obs != nil {
		s.obs.Observe(ev)
	}
}

// Decoder pulls packets from an io.Reader.
type Decoder struct {
	r       io.Reader
	s       *Stream
	buf     []byte
	pending []byte
	err     error
}

// NewDecoder reads from r in chunks of opts.ReadSize.
func NewDecoder(r io.Reader, reg *schema.Registry, opts Options) *Decoder {
	opts = opts.normalize(reg)
	return &Decoder{
		r:   r,
		s:   NewStream(reg, opts),
		buf: make([]byte, opts.ReadSize),
	}
}

// Stream exposes the underlying stream for its stats.
func (d *Decoder) Stream() *Stream { return d.s }

// Next returns the next packet. Parser rejects and payload decode failures
// come back as errors for which Recoverable is true; the following call
// carries on. At the end of input Next returns io.EOF, or
// io.ErrUnexpectedEOF once if the input stopped inside a frame. Any other
// read error is returned unchanged on every later call.
func (d *Decoder) Next() (schema.Packet, error) {
	for {
		for len(d.pending) > 0 {
			n, f, ok, err := d.s.parser.Consume(d.pending)
			d.pending = d.pending[n:]
			if err != nil {
				d.s.rejected(err)
				return schema.Packet{}, err
			}
			if ok {
				return d.s.decode(f)
			}
		}
		if d.err != nil {
			if errors.Is(d.err, io.EOF) && d.s.parser.State() != frame.StateSync1 {
				d.s.log.Debug().Stringer("state", d.s.parser.State()).Msg("protocol.Decoder input ended mid-frame")
				d.s.parser.Reset()
				return schema.Packet{}, io.ErrUnexpectedEOF
			}
			return schema.Packet{}, d.err
		}
		n, err := d.r.Read(d.buf)
		d.pending = d.buf[:n]
		if err != nil {
			d.err = err
		}
	}
}

// All iterates Next until a non-recoverable error. io.EOF ends the sequence
// without being yielded.
func (d *Decoder) All() iter.Seq2[schema.Packet, error] {
	return func(yield func(schema.Packet, error) bool) {
		for {
			pkt, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(pkt, err) || !Recoverable(err) {
				return
			}
		}
	}
}
