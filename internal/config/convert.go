package config

import (
	"fmt"
	"slices"

	"github.com/danmuck/ubxwire/internal/protocol"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
	"github.com/danmuck/ubxwire/internal/protocol/ubx"
)

// ProtocolRevision maps the configured revision onto a supported one.
func (c DumpConfig) ProtocolRevision() (schema.Revision, error) {
	if c.Revision == 0 {
		return ubx.Default, nil
	}
	rev := schema.Revision(c.Revision)
	if c.Revision < 0 || !slices.Contains(ubx.Revisions(), rev) {
		return 0, fmt.Errorf("unsupported protocol revision %d (have %v)", c.Revision, ubx.Revisions())
	}
	return rev, nil
}

// Registry returns the message registry for the configured revision. The
// build default is shared; other revisions are compiled on each call.
func (c DumpConfig) Registry() (*schema.Registry, error) {
	rev, err := c.ProtocolRevision()
	if err != nil {
		return nil, err
	}
	if rev == ubx.Default {
		return ubx.Registry(), nil
	}
	return ubx.NewRegistry(rev)
}

// ProtocolOptions builds stream options for reg. Observer and Logger are
// left for the caller.
func (c DumpConfig) ProtocolOptions(reg *schema.Registry) (protocol.Options, error) {
	mode, err := protocol.ParseAllocMode(c.AllocMode)
	if err != nil {
		return protocol.Options{}, err
	}
	opts := protocol.DefaultOptions(reg)
	opts.AllocMode = mode
	if c.MaxPayloadLen > 0 {
		opts.MaxPayloadLen = c.MaxPayloadLen
	}
	if c.Source.ReadChunk > 0 {
		opts.ReadSize = c.Source.ReadChunk
	}
	return opts, nil
}
