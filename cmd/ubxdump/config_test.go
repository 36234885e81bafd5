package main

import (
	"errors"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/danmuck/ubxwire/internal/config"
	"github.com/danmuck/ubxwire/internal/testutil/testlog"
)

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "ubxdump.toml")
	if err := config.WriteTemplate(path, config.SourceSerial, false); err != nil {
		t.Fatalf("write template: %v", err)
	}

	cfg, err := resolveConfig([]string{
		"-config", path,
		"-source", "file:capture.ubx.zst",
		"-revision", "14",
		"-pretty",
		"-poll", "NAV-PVT",
	}, io.Discard)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Source.Kind != config.SourceFile || cfg.Source.Path != "capture.ubx.zst" || cfg.Source.ReadChunk != 512 {
		t.Fatalf("unexpected source: %+v", cfg.Source)
	}
	if cfg.Revision != 14 || !cfg.Output.Pretty {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	// Two polls from the template plus the flag.
	if len(cfg.Polls) != 3 || cfg.Polls[2].Message != "NAV-PVT" {
		t.Fatalf("unexpected polls: %+v", cfg.Polls)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Fatalf("file value lost: %q", cfg.Metrics.Addr)
	}
}

func TestResolveConfigWithoutFile(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := resolveConfig([]string{"-source", "stdin"}, io.Discard)
	if err != nil {
		t.Fatalf("resolve without config file: %v", err)
	}
	if cfg.Source.Kind != config.SourceStdin || cfg.Name != "ubxdump" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := resolveConfig([]string{"-config", filepath.Join(dir, "nope.toml")}, io.Discard); err == nil {
		t.Fatalf("explicit missing config should fail")
	}
	if _, err := resolveConfig([]string{"-source", "tcp:localhost:1"}, io.Discard); err == nil {
		t.Fatalf("expected bad source kind error")
	}
	if _, err := resolveConfig([]string{"-source", "stdin", "-poll", "NAV-NOPE"}, io.Discard); err == nil {
		t.Fatalf("expected unknown poll message error")
	}
	if _, err := resolveConfig([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestParseSource(t *testing.T) {
	testlog.Start(t)
	cases := map[string]config.SourceConfig{
		"serial:/dev/ttyUSB0": {Kind: config.SourceSerial, Path: "/dev/ttyUSB0"},
		"FILE: a.ubx ":        {Kind: config.SourceFile, Path: "a.ubx"},
		"-":                   {Kind: config.SourceStdin},
	}
	for raw, want := range cases {
		got, err := parseSource(raw)
		if err != nil || got != want {
			t.Fatalf("parseSource(%q) = %+v, %v", raw, got, err)
		}
	}
	for _, raw := range []string{"", "serial:", "/dev/ttyACM0"} {
		if _, err := parseSource(raw); err == nil {
			t.Fatalf("parseSource(%q) should fail", raw)
		}
	}
}
