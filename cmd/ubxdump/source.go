package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/ubxwire/internal/config"
	"github.com/klauspost/compress/zstd"
	"go.bug.st/serial"
)

// source is the byte stream being dumped. w is nil for read-only sources.
type source struct {
	name   string
	r      io.Reader
	w      io.Writer
	closer io.Closer

	closeOnce sync.Once
	closeErr  error
}

// Close releases the source once; later calls return the first result.
func (s *source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.closer.Close()
	})
	return s.closeErr
}

var errReadOnly = errors.New("ubxdump: source is read-only")

func openSource(cfg config.SourceConfig) (*source, error) {
	switch cfg.Kind {
	case config.SourceSerial:
		return openSerial(cfg.Path, cfg.BaudRate)
	case config.SourceFile:
		return openCapture(cfg.Path)
	case config.SourceStdin:
		return &source{name: "stdin", r: os.Stdin, closer: closeFunc(func() error { return nil })}, nil
	default:
		return nil, fmt.Errorf("ubxdump: unknown source kind %q", cfg.Kind)
	}
}

func openSerial(path string, baud int) (*source, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("ubxdump: failed to open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, fmt.Errorf("ubxdump: failed to set timeout: %w", err)
	}
	return &source{name: path, r: port, w: port, closer: port}, nil
}

// openCapture opens a recorded stream. Files ending in .zst are zstd
// compressed.
func openCapture(path string) (*source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ubxdump: open capture: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return &source{name: path, r: f, closer: f}, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ubxdump: open zstd capture: %w", err)
	}
	return &source{name: path, r: zr, closer: closeFunc(func() error {
		zr.Close()
		return f.Close()
	})}, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
