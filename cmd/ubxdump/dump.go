package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/ubxwire/internal/config"
	"github.com/danmuck/ubxwire/internal/protocol"
	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
	"github.com/danmuck/ubxwire/internal/server"
	"github.com/rs/zerolog/log"
)

// record is one JSON line of output.
type record struct {
	Time   time.Time      `json:"time"`
	Packet *schema.Packet `json:"packet,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type dumper struct {
	dec   *protocol.Decoder
	out   *json.Encoder
	store *server.Store
	opts  config.OutputConfig
	now   func() time.Time
	stats atomic.Pointer[frame.Stats]
}

func newDumper(dec *protocol.Decoder, w io.Writer, store *server.Store, opts config.OutputConfig) *dumper {
	enc := json.NewEncoder(w)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	return &dumper{dec: dec, out: enc, store: store, opts: opts, now: time.Now}
}

// Stats is the parser counters as of the last emitted outcome. Safe to call
// from other goroutines.
func (d *dumper) Stats() frame.Stats {
	if st := d.stats.Load(); st != nil {
		return *st
	}
	return frame.Stats{}
}

// run writes every packet until the source ends. Input that stops inside a
// frame is a normal end for a cut capture and is not an error.
func (d *dumper) run() error {
	for pkt, err := range d.dec.All() {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			log.Warn().Msg("input ended inside a frame; partial frame dropped")
			return nil
		}
		if err != nil && !protocol.Recoverable(err) {
			return err
		}
		if err := d.emit(pkt, err); err != nil {
			return fmt.Errorf("ubxdump: write output: %w", err)
		}
	}
	return nil
}

func (d *dumper) emit(pkt schema.Packet, decodeErr error) error {
	st := d.dec.Stream().Stats()
	d.stats.Store(&st)
	if d.store != nil && decodeErr == nil {
		d.store.Record(pkt)
	}
	rec := record{Time: d.now().UTC()}
	switch {
	case decodeErr != nil:
		if !d.opts.Errors {
			return nil
		}
		rec.Error = decodeErr.Error()
	case !pkt.Recognized() && !d.opts.Unrecognized:
		return nil
	default:
		rec.Packet = &pkt
	}
	return d.out.Encode(rec)
}

// poller serializes writes to the device between the schedule and the
// status server.
type poller struct {
	mu  sync.Mutex
	reg *schema.Registry
	w   io.Writer
}

func (p *poller) Poll(name string) error {
	if p.w == nil {
		return errReadOnly
	}
	req, err := protocol.PollName(p.reg, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownMessage) {
			return fmt.Errorf("%w: %s", server.ErrUnknownMessage, name)
		}
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.w.Write(req)
	return err
}

// schedule sends one-shot polls immediately and repeats the rest on their
// interval until ctx is done.
func (p *poller) schedule(ctx context.Context, polls []config.PollConfig) {
	var wg sync.WaitGroup
	for _, pc := range polls {
		every, err := pc.Every()
		if err != nil {
			log.Warn().Err(err).Str("message", pc.Message).Msg("poll skipped")
			continue
		}
		if err := p.Poll(pc.Message); err != nil {
			log.Warn().Err(err).Str("message", pc.Message).Msg("poll failed")
		}
		if every == 0 {
			continue
		}
		wg.Add(1)
		go func(name string, every time.Duration) {
			defer wg.Done()
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := p.Poll(name); err != nil {
						log.Warn().Err(err).Str("message", name).Msg("poll failed")
					}
				}
			}
		}(pc.Message, every)
	}
	wg.Wait()
}
