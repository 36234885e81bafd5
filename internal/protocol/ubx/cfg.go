package ubx

import "github.com/danmuck/ubxwire/internal/protocol/field"

// Port ids for CFG-PRT.
const (
	PortI2C   uint8 = 0
	PortUART1 uint8 = 1
	PortUART2 uint8 = 2
	PortUSB   uint8 = 3
	PortSPI   uint8 = 4
)

type PrtTxReady uint16

var prtTxReadyBits = []field.Bit{
	field.Flag("en", 0),
	field.Flag("pol", 1),
	field.Range("pin", 2, 5),
	field.Range("thres", 7, 9),
}

func (PrtTxReady) Bits() []field.Bit { return prtTxReadyBits }

type PrtMode uint32

var prtModeBits = []field.Bit{
	field.Range("charLen", 6, 2),
	field.Range("parity", 9, 3),
	field.Range("nStopBits", 12, 2),
}

func (PrtMode) Bits() []field.Bit { return prtModeBits }

// Mode8N1 is the usual UART mode: 8 data bits, no parity, 1 stop bit.
const Mode8N1 PrtMode = 0x000008d0

type ProtoMask uint16

const (
	ProtoUBX   ProtoMask = 1 << 0
	ProtoNMEA  ProtoMask = 1 << 1
	ProtoRTCM  ProtoMask = 1 << 2
	ProtoRTCM3 ProtoMask = 1 << 5
)

var protoMaskBits = []field.Bit{
	field.Flag("ubx", 0),
	field.Flag("nmea", 1),
	field.Flag("rtcm", 2),
	field.Flag("rtcm3", 5),
}

func (ProtoMask) Bits() []field.Bit { return protoMaskBits }

type PrtFlags uint16

var prtFlagBits = []field.Bit{field.Flag("extendedTxTimeout", 1)}

func (PrtFlags) Bits() []field.Bit { return prtFlagBits }

// CfgPrt configures one I/O port.
type CfgPrt struct {
	PortID       uint8      `ubx:"u1"`
	_            [1]byte    `ubx:"reserved,len=1"`
	TxReady      PrtTxReady `ubx:"x2"`
	Mode         PrtMode    `ubx:"x4"`
	BaudRate     uint32     `ubx:"u4"`
	InProtoMask  ProtoMask  `ubx:"x2"`
	OutProtoMask ProtoMask  `ubx:"x2"`
	Flags        PrtFlags   `ubx:"x2"`
	_            [2]byte    `ubx:"reserved,len=2"`
}

// CfgMsg sets the output rate of one message on each of the six ports.
type CfgMsg struct {
	MsgClass uint8    `ubx:"u1"`
	MsgID    uint8    `ubx:"u1"`
	Rate     [6]uint8 `ubx:"u1"`
}

// CfgRate sets the measurement and navigation rate. MeasRate is in ms.
type CfgRate struct {
	MeasRate uint16 `ubx:"u2"`
	NavRate  uint16 `ubx:"u2"`
	TimeRef  uint16 `ubx:"u2"`
}

type BbrMask uint16

var bbrMaskBits = []field.Bit{
	field.Flag("eph", 0),
	field.Flag("alm", 1),
	field.Flag("health", 2),
	field.Flag("klob", 3),
	field.Flag("pos", 4),
	field.Flag("clkd", 5),
	field.Flag("osc", 6),
	field.Flag("utc", 7),
	field.Flag("rtc", 8),
	field.Flag("aop", 15),
}

func (BbrMask) Bits() []field.Bit { return bbrMaskBits }

// Reset modes for CFG-RST.
const (
	ResetHardware        uint8 = 0x00
	ResetSoftware        uint8 = 0x01
	ResetGNSSOnly        uint8 = 0x02
	ResetHardwareAfterSD uint8 = 0x04
	ResetGNSSStop        uint8 = 0x08
	ResetGNSSStart       uint8 = 0x09
)

// CfgRst resets the receiver. It is never acknowledged.
type CfgRst struct {
	NavBbrMask BbrMask `ubx:"x2"`
	ResetMode  uint8   `ubx:"u1"`
	_          [1]byte `ubx:"reserved,len=1"`
}

type Nav5Mask uint16

var nav5MaskBits = []field.Bit{
	field.Flag("dyn", 0),
	field.Flag("minEl", 1),
	field.Flag("posFixMode", 2),
	field.Flag("drLim", 3),
	field.Flag("posMask", 4),
	field.Flag("timeMask", 5),
	field.Flag("staticHoldMask", 6),
	field.Flag("dgpsMask", 7),
	field.Flag("cnoThreshold", 8),
	field.Flag("utc", 10),
}

func (Nav5Mask) Bits() []field.Bit { return nav5MaskBits }

// Dynamic platform models for CFG-NAV5.
const (
	DynPortable   uint8 = 0
	DynStationary uint8 = 2
	DynPedestrian uint8 = 3
	DynAutomotive uint8 = 4
	DynSea        uint8 = 5
	DynAirborne1g uint8 = 6
	DynAirborne2g uint8 = 7
	DynAirborne4g uint8 = 8
	DynWrist      uint8 = 9
)

// CfgNav5 holds the navigation engine settings. FixedAlt is in m, FixedAltVar
// in m^2, accuracy masks in m.
type CfgNav5 struct {
	Mask              Nav5Mask `ubx:"x2"`
	DynModel          uint8    `ubx:"u1"`
	FixMode           uint8    `ubx:"u1"`
	FixedAlt          float64  `ubx:"i4,scale=0.01"`
	FixedAltVar       float64  `ubx:"u4,scale=0.0001"`
	MinElev           int8     `ubx:"i1"`
	DRLimit           uint8    `ubx:"u1"`
	PDop              float64  `ubx:"u2,scale=0.1"`
	TDop              float64  `ubx:"u2,scale=0.1"`
	PAcc              uint16   `ubx:"u2"`
	TAcc              uint16   `ubx:"u2"`
	StaticHoldThresh  uint8    `ubx:"u1"`
	DGNSSTimeout      uint8    `ubx:"u1"`
	CnoThreshNumSVs   uint8    `ubx:"u1"`
	CnoThresh         uint8    `ubx:"u1"`
	_                 [2]byte  `ubx:"reserved,len=2"`
	StaticHoldMaxDist uint16   `ubx:"u2"`
	UTCStandard       uint8    `ubx:"u1"`
	_                 [5]byte  `ubx:"reserved,len=5"`
}
