//go:build !ubx_proto14 && !ubx_proto27 && !ubx_proto31

package ubx

// Default is the revision Registry compiles for.
const Default = Proto23
