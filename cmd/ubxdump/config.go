package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/danmuck/ubxwire/internal/config"
)

const defaultConfigPath = "cmd/ubxdump/config.toml"

// resolveConfig loads the config file, if any, then applies flags that were
// set explicitly on the command line.
func resolveConfig(args []string, stderr io.Writer) (config.DumpConfig, error) {
	fsFlags := flag.NewFlagSet("ubxdump", flag.ContinueOnError)
	fsFlags.SetOutput(stderr)
	path := fsFlags.String("config", defaultConfigPath, "path to a ubxdump TOML config; missing default is ignored")
	src := fsFlags.String("source", "", "byte source: serial:<device>, file:<path>[.zst] or stdin")
	baud := fsFlags.Int("baud", 0, "serial baud rate")
	revision := fsFlags.Int("revision", 0, "protocol revision (14, 23, 27, 31)")
	alloc := fsFlags.String("alloc", "", "payload buffer mode: fixed|dynamic")
	pretty := fsFlags.Bool("pretty", false, "indent JSON output")
	unknown := fsFlags.Bool("unrecognized", false, "print packets without a definition")
	metrics := fsFlags.String("metrics", "", "status server listen address")
	var polls multiFlag
	fsFlags.Var(&polls, "poll", "message name to poll once at start (repeatable)")
	if err := fsFlags.Parse(args); err != nil {
		return config.DumpConfig{}, err
	}

	set := make(map[string]bool)
	fsFlags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.LoadDumpConfig(*path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !set["config"]:
		cfg = config.DefaultDumpConfig()
	default:
		return config.DumpConfig{}, err
	}

	if set["source"] {
		s, err := parseSource(*src)
		if err != nil {
			return config.DumpConfig{}, err
		}
		s.BaudRate = cfg.Source.BaudRate
		s.ReadChunk = cfg.Source.ReadChunk
		cfg.Source = s
	}
	if set["baud"] {
		cfg.Source.BaudRate = *baud
	}
	if set["revision"] {
		cfg.Revision = *revision
	}
	if set["alloc"] {
		cfg.AllocMode = *alloc
	}
	if set["pretty"] {
		cfg.Output.Pretty = *pretty
	}
	if set["unrecognized"] {
		cfg.Output.Unrecognized = *unknown
	}
	if set["metrics"] {
		cfg.Metrics.Addr = strings.TrimSpace(*metrics)
	}
	for _, name := range polls {
		cfg.Polls = append(cfg.Polls, config.PollConfig{Message: name})
	}

	if err := config.ValidateDumpConfig(cfg); err != nil {
		return config.DumpConfig{}, err
	}
	return cfg, nil
}

func parseSource(raw string) (config.SourceConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == config.SourceStdin || raw == "-" {
		return config.SourceConfig{Kind: config.SourceStdin}, nil
	}
	kind, path, ok := strings.Cut(raw, ":")
	if !ok || strings.TrimSpace(path) == "" {
		return config.SourceConfig{}, fmt.Errorf("invalid -source %q: want serial:<device>, file:<path> or stdin", raw)
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != config.SourceSerial && kind != config.SourceFile {
		return config.SourceConfig{}, fmt.Errorf("invalid -source kind %q", kind)
	}
	return config.SourceConfig{Kind: kind, Path: strings.TrimSpace(path)}, nil
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("empty value")
	}
	*m = append(*m, v)
	return nil
}
