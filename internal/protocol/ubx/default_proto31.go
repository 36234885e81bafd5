//go:build ubx_proto31

package ubx

// Default is the revision Registry compiles for.
const Default = Proto31
