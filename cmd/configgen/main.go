package main

import (
	"flag"

	"github.com/danmuck/ubxwire/internal/config"
	"github.com/danmuck/ubxwire/internal/logging"
	"github.com/rs/zerolog/log"
)

const defaultPath = "cmd/ubxdump/config.toml"

func main() {
	logging.ConfigureRuntime()
	kind := flag.String("kind", config.SourceSerial, "config kind: serial|file")
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.LoadDumpConfig(*input)
		if err != nil {
			log.Fatal().Err(err).Msg("config invalid")
		}
		rev, _ := cfg.ProtocolRevision()
		log.Info().
			Str("path", *input).
			Str("source", cfg.Source.Kind).
			Uint16("revision", uint16(rev)).
			Int("polls", len(cfg.Polls)).
			Msg("validated ubxdump config")
		return
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		log.Fatal().Err(err).Msg("write template failed")
	}
	log.Info().Str("kind", *kind).Str("path", *output).Msg("wrote ubxdump config template")
}
