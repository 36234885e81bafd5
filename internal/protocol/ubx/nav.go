package ubx

import "github.com/danmuck/ubxwire/internal/protocol/field"

// AckAck acknowledges a CFG message.
type AckAck struct {
	ClsID uint8 `ubx:"u1"`
	MsgID uint8 `ubx:"u1"`
}

// AckNak rejects a CFG message.
type AckNak struct {
	ClsID uint8 `ubx:"u1"`
	MsgID uint8 `ubx:"u1"`
}

// Fix types reported by NAV-PVT and NAV-STATUS.
const (
	FixNone          uint8 = 0
	FixDeadReckoning uint8 = 1
	Fix2D            uint8 = 2
	Fix3D            uint8 = 3
	FixGNSSDR        uint8 = 4
	FixTimeOnly      uint8 = 5
)

// NavPosLLH is the geodetic position solution. Height is in mm.
type NavPosLLH struct {
	ITOW   uint32  `ubx:"u4"`
	Lon    float64 `ubx:"i4,scale=1e-7"`
	Lat    float64 `ubx:"i4,scale=1e-7"`
	Height int32   `ubx:"i4"`
	HMSL   int32   `ubx:"i4"`
	HAcc   uint32  `ubx:"u4"`
	VAcc   uint32  `ubx:"u4"`
}

type StatusFlags uint8

var statusFlagBits = []field.Bit{
	field.Flag("gpsFixOk", 0),
	field.Flag("diffSoln", 1),
	field.Flag("wknSet", 2),
	field.Flag("towSet", 3),
}

func (StatusFlags) Bits() []field.Bit { return statusFlagBits }

type StatusFixStat uint8

var statusFixStatBits = []field.Bit{
	field.Flag("diffCorr", 0),
	field.Flag("carrSolnValid", 1),
	field.Range("mapMatching", 6, 2),
}

func (StatusFixStat) Bits() []field.Bit { return statusFixStatBits }

type StatusFlags2 uint8

var statusFlags2Bits = []field.Bit{
	field.Range("psmState", 0, 2),
	field.Range("spoofDetState", 3, 2),
	field.Range("carrSoln", 6, 2),
}

func (StatusFlags2) Bits() []field.Bit { return statusFlags2Bits }

// NavStatus is the receiver navigation status.
type NavStatus struct {
	ITOW    uint32        `ubx:"u4"`
	GPSFix  uint8         `ubx:"u1"`
	Flags   StatusFlags   `ubx:"x1"`
	FixStat StatusFixStat `ubx:"x1"`
	Flags2  StatusFlags2  `ubx:"x1"`
	TTFF    uint32        `ubx:"u4"`
	MSSS    uint32        `ubx:"u4"`
}

// NavDOP holds the dilution of precision values.
type NavDOP struct {
	ITOW uint32  `ubx:"u4"`
	GDOP float64 `ubx:"u2,scale=0.01"`
	PDOP float64 `ubx:"u2,scale=0.01"`
	TDOP float64 `ubx:"u2,scale=0.01"`
	VDOP float64 `ubx:"u2,scale=0.01"`
	HDOP float64 `ubx:"u2,scale=0.01"`
	NDOP float64 `ubx:"u2,scale=0.01"`
	EDOP float64 `ubx:"u2,scale=0.01"`
}

type PVTValid uint8

var pvtValidBits = []field.Bit{
	field.Flag("validDate", 0),
	field.Flag("validTime", 1),
	field.Flag("fullyResolved", 2),
	field.Flag("validMag", 3),
}

func (PVTValid) Bits() []field.Bit { return pvtValidBits }

type PVTFlags uint8

var pvtFlagBits = []field.Bit{
	field.Flag("gnssFixOK", 0),
	field.Flag("diffSoln", 1),
	field.Range("psmState", 2, 3),
	field.Flag("headVehValid", 5),
	field.Range("carrSoln", 6, 2),
}

func (PVTFlags) Bits() []field.Bit { return pvtFlagBits }

// FixOK reports the gnssFixOK bit.
func (f PVTFlags) FixOK() bool { return f&1 != 0 }

type PVTFlags2 uint8

var pvtFlags2Bits = []field.Bit{
	field.Flag("confirmedAvai", 5),
	field.Flag("confirmedDate", 6),
	field.Flag("confirmedTime", 7),
}

func (PVTFlags2) Bits() []field.Bit { return pvtFlags2Bits }

type PVTFlags3 uint16

var pvtFlags3Bits = []field.Bit{
	field.Flag("invalidLlh", 0),
	field.Range("lastCorrectionAge", 1, 4),
}

func (PVTFlags3) Bits() []field.Bit { return pvtFlags3Bits }

// NavPVT is the combined position, velocity and time solution. Lengths are
// in mm, speeds in mm/s, headings in degrees.
type NavPVT struct {
	ITOW    uint32    `ubx:"u4"`
	Year    uint16    `ubx:"u2"`
	Month   uint8     `ubx:"u1"`
	Day     uint8     `ubx:"u1"`
	Hour    uint8     `ubx:"u1"`
	Min     uint8     `ubx:"u1"`
	Sec     uint8     `ubx:"u1"`
	Valid   PVTValid  `ubx:"x1"`
	TAcc    uint32    `ubx:"u4"`
	Nano    int32     `ubx:"i4"`
	FixType uint8     `ubx:"u1"`
	Flags   PVTFlags  `ubx:"x1"`
	Flags2  PVTFlags2 `ubx:"x1"`
	NumSV   uint8     `ubx:"u1"`
	Lon     float64   `ubx:"i4,scale=1e-7"`
	Lat     float64   `ubx:"i4,scale=1e-7"`
	Height  int32     `ubx:"i4"`
	HMSL    int32     `ubx:"i4"`
	HAcc    uint32    `ubx:"u4"`
	VAcc    uint32    `ubx:"u4"`
	VelN    int32     `ubx:"i4"`
	VelE    int32     `ubx:"i4"`
	VelD    int32     `ubx:"i4"`
	GSpeed  int32     `ubx:"i4"`
	HeadMot float64   `ubx:"i4,scale=1e-5"`
	SAcc    uint32    `ubx:"u4"`
	HeadAcc float64   `ubx:"u4,scale=1e-5"`
	PDOP    float64   `ubx:"u2,scale=0.01"`
	_       [6]byte   `ubx:"reserved,len=6,until=14"`
	Flags3  PVTFlags3 `ubx:"x2,since=23"`
	_       [4]byte   `ubx:"reserved,len=4,since=23"`
	HeadVeh float64   `ubx:"i4,scale=1e-5"`
	MagDec  float64   `ubx:"i2,scale=1e-2"`
	MagAcc  float64   `ubx:"u2,scale=1e-2"`
}

type TimeUTCValid uint8

var timeUTCValidBits = []field.Bit{
	field.Flag("validTOW", 0),
	field.Flag("validWKN", 1),
	field.Flag("validUTC", 2),
	field.Range("utcStandard", 4, 4),
}

func (TimeUTCValid) Bits() []field.Bit { return timeUTCValidBits }

// NavTimeUTC is the UTC time solution.
type NavTimeUTC struct {
	ITOW  uint32       `ubx:"u4"`
	TAcc  uint32       `ubx:"u4"`
	Nano  int32        `ubx:"i4"`
	Year  uint16       `ubx:"u2"`
	Month uint8        `ubx:"u1"`
	Day   uint8        `ubx:"u1"`
	Hour  uint8        `ubx:"u1"`
	Min   uint8        `ubx:"u1"`
	Sec   uint8        `ubx:"u1"`
	Valid TimeUTCValid `ubx:"x1"`
}

type SVInfoGlobalFlags uint8

var svInfoGlobalBits = []field.Bit{field.Range("chipGen", 0, 3)}

func (SVInfoGlobalFlags) Bits() []field.Bit { return svInfoGlobalBits }

type SVInfoFlags uint8

var svInfoFlagBits = []field.Bit{
	field.Flag("svUsed", 0),
	field.Flag("diffCorr", 1),
	field.Flag("orbitAvail", 2),
	field.Flag("orbitEph", 3),
	field.Flag("unhealthy", 4),
	field.Flag("orbitAlm", 5),
	field.Flag("orbitAop", 6),
	field.Flag("smoothed", 7),
}

func (SVInfoFlags) Bits() []field.Bit { return svInfoFlagBits }

type SVInfoQuality uint8

var svInfoQualityBits = []field.Bit{field.Range("qualityInd", 0, 4)}

func (SVInfoQuality) Bits() []field.Bit { return svInfoQualityBits }

// SVInfoChannel is one NAV-SVINFO channel. PRRes is in cm.
type SVInfoChannel struct {
	Chn     uint8         `ubx:"u1"`
	SVID    uint8         `ubx:"u1"`
	Flags   SVInfoFlags   `ubx:"x1"`
	Quality SVInfoQuality `ubx:"x1"`
	Cno     uint8         `ubx:"u1"`
	Elev    int8          `ubx:"i1"`
	Azim    int16         `ubx:"i2"`
	PRRes   int32         `ubx:"i4"`
}

// NavSVInfo is the legacy per-channel satellite report.
type NavSVInfo struct {
	ITOW        uint32            `ubx:"u4"`
	NumCh       uint8             `ubx:"u1"`
	GlobalFlags SVInfoGlobalFlags `ubx:"x1"`
	_           [2]byte           `ubx:"reserved,len=2"`
	Channels    []SVInfoChannel   `ubx:"group,count=NumCh,max=102"`
}

type SatFlags uint32

var satFlagBits = []field.Bit{
	field.Range("qualityInd", 0, 3),
	field.Flag("svUsed", 3),
	field.Range("health", 4, 2),
	field.Flag("diffCorr", 6),
	field.Flag("smoothed", 7),
	field.Range("orbitSource", 8, 3),
	field.Flag("ephAvail", 11),
	field.Flag("almAvail", 12),
	field.Flag("anoAvail", 13),
	field.Flag("aopAvail", 14),
	field.Flag("sbasCorrUsed", 16),
	field.Flag("rtcmCorrUsed", 17),
	field.Flag("slasCorrUsed", 18),
	field.Flag("spartnCorrUsed", 19),
	field.Flag("prCorrUsed", 20),
	field.Flag("crCorrUsed", 21),
	field.Flag("doCorrUsed", 22),
}

func (SatFlags) Bits() []field.Bit { return satFlagBits }

// Used reports the svUsed bit.
func (f SatFlags) Used() bool { return f&(1<<3) != 0 }

// SatInfo is one NAV-SAT satellite. PRRes is in m.
type SatInfo struct {
	GNSSID uint8    `ubx:"u1"`
	SVID   uint8    `ubx:"u1"`
	Cno    uint8    `ubx:"u1"`
	Elev   int8     `ubx:"i1"`
	Azim   int16    `ubx:"i2"`
	PRRes  float64  `ubx:"i2,scale=0.1"`
	Flags  SatFlags `ubx:"x4"`
}

// NavSat is the satellite information report that replaced NAV-SVINFO.
type NavSat struct {
	ITOW    uint32    `ubx:"u4"`
	Version uint8     `ubx:"u1"`
	NumSvs  uint8     `ubx:"u1"`
	_       [2]byte   `ubx:"reserved,len=2"`
	Svs     []SatInfo `ubx:"group,count=NumSvs,max=102"`
}

type RelPosFlags uint32

var relPosFlagBits = []field.Bit{
	field.Flag("gnssFixOK", 0),
	field.Flag("diffSoln", 1),
	field.Flag("relPosValid", 2),
	field.Range("carrSoln", 3, 2),
	field.Flag("isMoving", 5),
	field.Flag("refPosMiss", 6),
	field.Flag("refObsMiss", 7),
	field.Flag("relPosHeadingValid", 8),
	field.Flag("relPosNormalized", 9),
}

func (RelPosFlags) Bits() []field.Bit { return relPosFlagBits }

// NavRelPosNED is the relative position to the RTK reference station.
// Under Proto14 the message is 40 bytes and carries no length or heading;
// from Proto23 it is 64 bytes. RelPos fields are in cm, the HP parts and
// accuracies in mm, headings in degrees.
type NavRelPosNED struct {
	Version        uint8       `ubx:"u1"`
	_              [1]byte     `ubx:"reserved,len=1"`
	RefStationID   uint16      `ubx:"u2"`
	ITOW           uint32      `ubx:"u4"`
	RelPosN        int32       `ubx:"i4"`
	RelPosE        int32       `ubx:"i4"`
	RelPosD        int32       `ubx:"i4"`
	RelPosLength   int32       `ubx:"i4,since=23"`
	RelPosHeading  float64     `ubx:"i4,scale=1e-5,since=23"`
	_              [4]byte     `ubx:"reserved,len=4,since=23"`
	RelPosHPN      float64     `ubx:"i1,scale=0.1"`
	RelPosHPE      float64     `ubx:"i1,scale=0.1"`
	RelPosHPD      float64     `ubx:"i1,scale=0.1"`
	_              [1]byte     `ubx:"reserved,len=1,until=14"`
	RelPosHPLength float64     `ubx:"i1,scale=0.1,since=23"`
	AccN           float64     `ubx:"u4,scale=0.1"`
	AccE           float64     `ubx:"u4,scale=0.1"`
	AccD           float64     `ubx:"u4,scale=0.1"`
	AccLength      float64     `ubx:"u4,scale=0.1,since=23"`
	AccHeading     float64     `ubx:"u4,scale=1e-5,since=23"`
	_              [4]byte     `ubx:"reserved,len=4,since=23"`
	Flags          RelPosFlags `ubx:"x4"`
}

// NavEOE marks the end of a navigation epoch.
type NavEOE struct {
	ITOW uint32 `ubx:"u4"`
}
