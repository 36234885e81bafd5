package ubx

import "github.com/danmuck/ubxwire/internal/protocol/field"

type RawxRecStat uint8

var rawxRecStatBits = []field.Bit{
	field.Flag("leapSec", 0),
	field.Flag("clkReset", 1),
}

func (RawxRecStat) Bits() []field.Bit { return rawxRecStatBits }

type RawxStdev uint8

var rawxStdevBits = []field.Bit{field.Range("stdev", 0, 4)}

func (RawxStdev) Bits() []field.Bit { return rawxStdevBits }

type RawxTrkStat uint8

var rawxTrkStatBits = []field.Bit{
	field.Flag("prValid", 0),
	field.Flag("cpValid", 1),
	field.Flag("halfCyc", 2),
	field.Flag("subHalfCyc", 3),
}

func (RawxTrkStat) Bits() []field.Bit { return rawxTrkStatBits }

// RawxMeas is one raw measurement. PRMes is in m, CPMes in cycles, DoMes in
// Hz. SigID is reserved before Proto27.
type RawxMeas struct {
	PRMes    float64     `ubx:"r8"`
	CPMes    float64     `ubx:"r8"`
	DoMes    float32     `ubx:"r4"`
	GNSSID   uint8       `ubx:"u1"`
	SVID     uint8       `ubx:"u1"`
	_        [1]byte     `ubx:"reserved,len=1,until=23"`
	SigID    uint8       `ubx:"u1,since=24"`
	FreqID   uint8       `ubx:"u1"`
	Locktime uint16      `ubx:"u2"`
	Cno      uint8       `ubx:"u1"`
	PRStdev  RawxStdev   `ubx:"x1"`
	CPStdev  RawxStdev   `ubx:"x1"`
	DoStdev  RawxStdev   `ubx:"x1"`
	TrkStat  RawxTrkStat `ubx:"x1"`
	_        [1]byte     `ubx:"reserved,len=1"`
}

// RxmRawx carries the raw pseudorange, carrier phase and doppler of every
// tracked signal. RcvTow is in s.
type RxmRawx struct {
	RcvTow  float64     `ubx:"r8"`
	Week    uint16      `ubx:"u2"`
	LeapS   int8        `ubx:"i1"`
	NumMeas uint8       `ubx:"u1"`
	RecStat RawxRecStat `ubx:"x1"`
	_       [3]byte     `ubx:"reserved,len=3,until=23"`
	Version uint8       `ubx:"u1,since=24"`
	_       [2]byte     `ubx:"reserved,len=2,since=24"`
	Meas    []RawxMeas  `ubx:"group,count=NumMeas,max=38"`
}
