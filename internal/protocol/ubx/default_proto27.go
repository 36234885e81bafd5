//go:build ubx_proto27

package ubx

// Default is the revision Registry compiles for.
const Default = Proto27
