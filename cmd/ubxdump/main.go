// Command ubxdump decodes a UBX byte stream from a serial port, a capture
// file or stdin and prints one JSON line per packet.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/ubxwire/internal/config"
	"github.com/danmuck/ubxwire/internal/observability"
	"github.com/danmuck/ubxwire/internal/protocol"
	"github.com/danmuck/ubxwire/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	observability.InitLogger("ubxdump")
	cfg, err := resolveConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load ubxdump config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("ubxdump stopped")
	}
}

func run(ctx context.Context, cfg config.DumpConfig) error {
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	opts, err := cfg.ProtocolOptions(reg)
	if err != nil {
		return err
	}
	opts.Observer = observability.StreamObserver(cfg.Name)

	src, err := openSource(cfg.Source)
	if err != nil {
		return err
	}
	defer src.Close()
	log.Info().
		Str("source", src.name).
		Uint16("revision", uint16(reg.Revision())).
		Int("max_payload_len", opts.MaxPayloadLen).
		Stringer("alloc_mode", opts.AllocMode).
		Msg("ubxdump started")

	// Closing the source unblocks a pending read.
	go func() {
		<-ctx.Done()
		src.Close()
	}()

	dec := protocol.NewDecoder(src.r, reg, opts)
	store := server.NewStore()
	d := newDumper(dec, os.Stdout, store, cfg.Output)
	p := &poller{reg: reg, w: src.w}

	if cfg.Metrics.Addr != "" {
		srv := server.New(cfg.Name, cfg.Metrics.Addr, cfg.Metrics.CorsOrigins, store, d.Stats)
		srv.SetPoller(p)
		go func() {
			if err := srv.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}
	if len(cfg.Polls) > 0 && src.w != nil {
		go p.schedule(ctx, cfg.Polls)
	}

	err = d.run()
	st := dec.Stream().Stats()
	log.Info().
		Uint64("accepted", st.Accepted).
		Uint64("checksum", st.Checksum).
		Uint64("oversize", st.Oversize).
		Uint64("discarded", st.Discarded).
		Msg("ubxdump finished")
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
