package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/ubxwire/internal/protocol"
	"github.com/danmuck/ubxwire/internal/protocol/frame"
)

const (
	SourceSerial = "serial"
	SourceFile   = "file"
	SourceStdin  = "stdin"
)

// DumpConfig drives cmd/ubxdump. Revision 0 selects the build default.
type DumpConfig struct {
	Name          string        `toml:"name"`
	Revision      int           `toml:"revision"`
	MaxPayloadLen int           `toml:"max_payload_len"`
	AllocMode     string        `toml:"alloc_mode"`
	Source        SourceConfig  `toml:"source"`
	Output        OutputConfig  `toml:"output"`
	Metrics       MetricsConfig `toml:"metrics"`
	Polls         []PollConfig  `toml:"poll"`
}

type SourceConfig struct {
	Kind      string `toml:"kind"`
	Path      string `toml:"path"`
	BaudRate  int    `toml:"baud_rate"`
	ReadChunk int    `toml:"read_chunk"`
}

type OutputConfig struct {
	Pretty       bool `toml:"pretty"`
	Unrecognized bool `toml:"unrecognized"`
	Errors       bool `toml:"errors"`
}

// MetricsConfig enables the status server when Addr is set.
type MetricsConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

// PollConfig requests a message from the receiver. An empty Interval polls
// once at start.
type PollConfig struct {
	Message  string `toml:"message"`
	Interval string `toml:"interval"`
}

func DefaultDumpConfig() DumpConfig {
	return DumpConfig{
		Name:          "ubxdump",
		MaxPayloadLen: frame.DefaultMaxPayloadLen,
		AllocMode:     protocol.AllocFixed.String(),
		Source: SourceConfig{
			Kind:      SourceSerial,
			Path:      "/dev/ttyACM0",
			BaudRate:  38400,
			ReadChunk: 512,
		},
		Output: OutputConfig{Errors: true},
	}
}

// LoadDumpConfig reads path over DefaultDumpConfig. Keys absent from the
// file keep their defaults.
func LoadDumpConfig(path string) (DumpConfig, error) {
	cfg := DefaultDumpConfig()

	var raw DumpConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return DumpConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return DumpConfig{}, fmt.Errorf("config parse failed (%s): unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("revision") {
		cfg.Revision = raw.Revision
	}
	if meta.IsDefined("max_payload_len") {
		cfg.MaxPayloadLen = raw.MaxPayloadLen
	}
	if meta.IsDefined("alloc_mode") {
		cfg.AllocMode = strings.TrimSpace(raw.AllocMode)
	}

	if meta.IsDefined("source", "kind") {
		cfg.Source.Kind = strings.ToLower(strings.TrimSpace(raw.Source.Kind))
		if !meta.IsDefined("source", "path") && cfg.Source.Kind != SourceSerial {
			cfg.Source.Path = ""
		}
	}
	if meta.IsDefined("source", "path") {
		cfg.Source.Path = strings.TrimSpace(raw.Source.Path)
	}
	if meta.IsDefined("source", "baud_rate") {
		cfg.Source.BaudRate = raw.Source.BaudRate
	}
	if meta.IsDefined("source", "read_chunk") {
		cfg.Source.ReadChunk = raw.Source.ReadChunk
	}

	if meta.IsDefined("output", "pretty") {
		cfg.Output.Pretty = raw.Output.Pretty
	}
	if meta.IsDefined("output", "unrecognized") {
		cfg.Output.Unrecognized = raw.Output.Unrecognized
	}
	if meta.IsDefined("output", "errors") {
		cfg.Output.Errors = raw.Output.Errors
	}

	if meta.IsDefined("metrics", "addr") {
		cfg.Metrics.Addr = strings.TrimSpace(raw.Metrics.Addr)
	}
	if meta.IsDefined("metrics", "cors_origins") {
		cfg.Metrics.CorsOrigins = normalizeList(raw.Metrics.CorsOrigins)
	}

	if meta.IsDefined("poll") {
		cfg.Polls = raw.Polls
	}

	if err := ValidateDumpConfig(cfg); err != nil {
		return DumpConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func ValidateDumpConfig(cfg DumpConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("dump config missing name")
	}
	if _, err := cfg.ProtocolRevision(); err != nil {
		return err
	}
	if cfg.MaxPayloadLen < 0 || cfg.MaxPayloadLen > frame.MaxPayloadLen {
		return fmt.Errorf("max_payload_len %d out of range [0, %d]", cfg.MaxPayloadLen, frame.MaxPayloadLen)
	}
	if _, err := protocol.ParseAllocMode(cfg.AllocMode); err != nil {
		return err
	}
	if err := ValidateSource(cfg.Source); err != nil {
		return fmt.Errorf("source invalid: %w", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	for i, p := range cfg.Polls {
		if _, ok := reg.LookupName(strings.TrimSpace(p.Message)); !ok {
			return fmt.Errorf("poll[%d] invalid: unknown message %q", i, p.Message)
		}
		if _, err := p.Every(); err != nil {
			return fmt.Errorf("poll[%d] invalid: %w", i, err)
		}
	}
	return nil
}

func ValidateSource(src SourceConfig) error {
	switch src.Kind {
	case SourceSerial:
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("serial source requires path")
		}
		if src.BaudRate <= 0 {
			return fmt.Errorf("serial source requires a positive baud_rate")
		}
	case SourceFile:
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("file source requires path")
		}
	case SourceStdin:
	default:
		return fmt.Errorf("unknown source kind %q", src.Kind)
	}
	if src.ReadChunk < 0 {
		return fmt.Errorf("read_chunk must not be negative")
	}
	return nil
}

// Every parses the poll interval. Zero means poll once.
func (p PollConfig) Every() (time.Duration, error) {
	raw := strings.TrimSpace(p.Interval)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("interval %s is negative", d)
	}
	return d, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
