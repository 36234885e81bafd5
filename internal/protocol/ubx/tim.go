package ubx

import "github.com/danmuck/ubxwire/internal/protocol/field"

type TPFlags uint8

var tpFlagBits = []field.Bit{
	field.Flag("timeBase", 0),
	field.Flag("utc", 1),
	field.Range("raim", 2, 2),
	field.Flag("qErrInvalid", 4),
}

func (TPFlags) Bits() []field.Bit { return tpFlagBits }

type TPRefInfo uint8

var tpRefInfoBits = []field.Bit{
	field.Range("timeRefGnss", 0, 4),
	field.Range("utcStandard", 4, 4),
}

func (TPRefInfo) Bits() []field.Bit { return tpRefInfoBits }

// TimTP announces the time of the next time pulse. TowSubMS is the fraction
// of a millisecond, QErr is in ps.
type TimTP struct {
	TowMS    uint32    `ubx:"u4"`
	TowSubMS float64   `ubx:"u4,scale=1/4294967296"`
	QErr     int32     `ubx:"i4"`
	Week     uint16    `ubx:"u2"`
	Flags    TPFlags   `ubx:"x1"`
	RefInfo  TPRefInfo `ubx:"x1"`
}
