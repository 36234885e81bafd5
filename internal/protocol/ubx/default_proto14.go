//go:build ubx_proto14

package ubx

// Default is the revision Registry compiles for.
const Default = Proto14
