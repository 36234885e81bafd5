// Package ubx declares the UBX message set understood by ubxwire.
//
// Each message is a tagged struct (see field.ParseTag). Layout differences
// between protocol revisions are expressed with since/until gates on the
// fields, so one struct covers every revision the message exists in.
// The default revision is chosen at build time:
//
//	go build                      -> Proto23
//	go build -tags ubx_proto14    -> Proto14
//	go build -tags ubx_proto27    -> Proto27
//	go build -tags ubx_proto31    -> Proto31
package ubx

import (
	"sync"

	"github.com/danmuck/ubxwire/internal/protocol/schema"
)

// Protocol revisions with distinct layouts.
const (
	Proto14 schema.Revision = 14
	Proto23 schema.Revision = 23
	Proto27 schema.Revision = 27
	Proto31 schema.Revision = 31
)

// Revisions lists the supported revisions in ascending order.
func Revisions() []schema.Revision {
	return []schema.Revision{Proto14, Proto23, Proto27, Proto31}
}

// Message classes.
const (
	ClassNAV uint8 = 0x01
	ClassRXM uint8 = 0x02
	ClassACK uint8 = 0x05
	ClassCFG uint8 = 0x06
	ClassMON uint8 = 0x0a
	ClassTIM uint8 = 0x0d
)

// Message ids.
const (
	IDAckNak uint8 = 0x00
	IDAckAck uint8 = 0x01

	IDNavPosLLH    uint8 = 0x02
	IDNavStatus    uint8 = 0x03
	IDNavDOP       uint8 = 0x04
	IDNavPVT       uint8 = 0x07
	IDNavTimeUTC   uint8 = 0x21
	IDNavSVInfo    uint8 = 0x30
	IDNavSat       uint8 = 0x35
	IDNavRelPosNED uint8 = 0x3c
	IDNavEOE       uint8 = 0x61

	IDCfgPrt  uint8 = 0x00
	IDCfgMsg  uint8 = 0x01
	IDCfgRst  uint8 = 0x04
	IDCfgRate uint8 = 0x08
	IDCfgNav5 uint8 = 0x24

	IDMonVer uint8 = 0x04

	IDRxmRawx uint8 = 0x15

	IDTimTP uint8 = 0x01
)

var messages = []schema.Message{
	{Class: ClassACK, ID: IDAckNak, Name: "ACK-NAK", Type: AckNak{}},
	{Class: ClassACK, ID: IDAckAck, Name: "ACK-ACK", Type: AckAck{}},

	{Class: ClassNAV, ID: IDNavPosLLH, Name: "NAV-POSLLH", Type: NavPosLLH{}},
	{Class: ClassNAV, ID: IDNavStatus, Name: "NAV-STATUS", Type: NavStatus{}},
	{Class: ClassNAV, ID: IDNavDOP, Name: "NAV-DOP", Type: NavDOP{}},
	{Class: ClassNAV, ID: IDNavPVT, Name: "NAV-PVT", Type: NavPVT{}},
	{Class: ClassNAV, ID: IDNavTimeUTC, Name: "NAV-TIMEUTC", Type: NavTimeUTC{}},
	{Class: ClassNAV, ID: IDNavSVInfo, Name: "NAV-SVINFO", Type: NavSVInfo{}, Until: Proto23},
	{Class: ClassNAV, ID: IDNavSat, Name: "NAV-SAT", Type: NavSat{}, Since: Proto23},
	{Class: ClassNAV, ID: IDNavRelPosNED, Name: "NAV-RELPOSNED", Type: NavRelPosNED{}},
	{Class: ClassNAV, ID: IDNavEOE, Name: "NAV-EOE", Type: NavEOE{}, Since: Proto23},

	{Class: ClassCFG, ID: IDCfgPrt, Name: "CFG-PRT", Type: CfgPrt{}},
	{Class: ClassCFG, ID: IDCfgMsg, Name: "CFG-MSG", Type: CfgMsg{}},
	{Class: ClassCFG, ID: IDCfgRst, Name: "CFG-RST", Type: CfgRst{}},
	{Class: ClassCFG, ID: IDCfgRate, Name: "CFG-RATE", Type: CfgRate{}},
	{Class: ClassCFG, ID: IDCfgNav5, Name: "CFG-NAV5", Type: CfgNav5{}},

	{Class: ClassMON, ID: IDMonVer, Name: "MON-VER", Type: MonVer{}},

	{Class: ClassRXM, ID: IDRxmRawx, Name: "RXM-RAWX", Type: RxmRawx{}, Since: Proto23},

	{Class: ClassTIM, ID: IDTimTP, Name: "TIM-TP", Type: TimTP{}},
}

// Messages returns every message declaration, across all revisions.
func Messages() []schema.Message {
	return append([]schema.Message(nil), messages...)
}

// NewRegistry compiles the message set for rev.
func NewRegistry(rev schema.Revision) (*schema.Registry, error) {
	return schema.NewRegistry(rev, messages...)
}

var defaultRegistry = sync.OnceValues(func() (*schema.Registry, error) {
	return NewRegistry(Default)
})

// Registry returns the shared registry for the build's default revision.
// It panics if the message set does not compile, which the package tests
// rule out for every revision.
func Registry() *schema.Registry {
	reg, err := defaultRegistry()
	if err != nil {
		panic(err)
	}
	return reg
}
