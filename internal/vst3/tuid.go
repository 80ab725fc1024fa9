package vst3

import (
	"encoding/binary"
	"fmt"
	"runtime"
)

// TUID is the 16-byte interface/class identifier, stored in wire order.
// Identifiers compare by value.
type TUID [16]byte

// NewTUID encodes four 32-bit groups into wire order. The encoding is
// platform dependent, matching the plugin SDK: Windows uses the COM GUID
// layout (first group little-endian, second group as two little-endian
// 16-bit halves, rest big-endian), every other platform is plain big-endian.
func NewTUID(a, b, c, d uint32) TUID {
	if runtime.GOOS == "windows" {
		return NewTUIDCOM(a, b, c, d)
	}
	return NewTUIDBigEndian(a, b, c, d)
}

// NewTUIDCOM encodes in the COM-compatible GUID byte order:
// a0 a1 a2 a3 b2 b3 b0 b1 c3 c2 c1 c0 d3 d2 d1 d0, subscript 0 being the
// least significant byte.
func NewTUIDCOM(a, b, c, d uint32) TUID {
	var t TUID
	binary.LittleEndian.PutUint32(t[0:4], a)
	binary.LittleEndian.PutUint16(t[4:6], uint16(b>>16))
	binary.LittleEndian.PutUint16(t[6:8], uint16(b))
	binary.BigEndian.PutUint32(t[8:12], c)
	binary.BigEndian.PutUint32(t[12:16], d)
	return t
}

// NewTUIDBigEndian encodes all four groups big-endian.
func NewTUIDBigEndian(a, b, c, d uint32) TUID {
	var t TUID
	binary.BigEndian.PutUint32(t[0:4], a)
	binary.BigEndian.PutUint32(t[4:8], b)
	binary.BigEndian.PutUint32(t[8:12], c)
	binary.BigEndian.PutUint32(t[12:16], d)
	return t
}

// Parts decodes the identifier back into its four 32-bit groups, inverting
// whichever encoding NewTUID applied on this platform.
func (t TUID) Parts() (a, b, c, d uint32) {
	if runtime.GOOS == "windows" {
		a = binary.LittleEndian.Uint32(t[0:4])
		b = uint32(binary.LittleEndian.Uint16(t[4:6]))<<16 | uint32(binary.LittleEndian.Uint16(t[6:8]))
		c = binary.BigEndian.Uint32(t[8:12])
		d = binary.BigEndian.Uint32(t[12:16])
		return
	}
	a = binary.BigEndian.Uint32(t[0:4])
	b = binary.BigEndian.Uint32(t[4:8])
	c = binary.BigEndian.Uint32(t[8:12])
	d = binary.BigEndian.Uint32(t[12:16])
	return
}

// IsZero reports whether the identifier is all zero bytes.
func (t TUID) IsZero() bool { return t == TUID{} }

func (t TUID) String() string {
	return fmt.Sprintf("%X", t[:])
}

// Interface identifiers of everything the host calls or implements.
var (
	IIDFUnknown           = NewTUID(0x00000000, 0x00000000, 0xC0000000, 0x00000046)
	IIDIPluginBase        = NewTUID(0x22888DDB, 0x156E45AE, 0x8358B348, 0x08190625)
	IIDIPluginFactory     = NewTUID(0x7A4D811C, 0x52114A1F, 0xAED9D2EE, 0x0B43BF9F)
	IIDIComponent         = NewTUID(0xE831FF31, 0xF2D54301, 0x928EBBEE, 0x25697802)
	IIDIAudioProcessor    = NewTUID(0x42043F99, 0xB7DA453C, 0xA569E79D, 0x9AAEC33D)
	IIDIEditController    = NewTUID(0xDCD7BBE3, 0x7742448D, 0xA874AACC, 0x979C759E)
	IIDIConnectionPoint   = NewTUID(0x70A4156F, 0x6E6E4026, 0x989148BF, 0xAA60D8D1)
	IIDIPlugView          = NewTUID(0x5BC32507, 0xD06049EA, 0xA6151B52, 0x2B755B29)
	IIDIPlugFrame         = NewTUID(0x367FAF01, 0xAFA94693, 0x8D4DA2A0, 0xED0882A3)
	IIDIHostApplication   = NewTUID(0x58E595CC, 0xDB2D4969, 0x8B6AAF8C, 0x36A664E5)
	IIDIComponentHandler  = NewTUID(0x93A0BEA3, 0x0BD045DB, 0x8E890B0C, 0xC1E46AC6)
	IIDIComponentHandler2 = NewTUID(0xF040B4B3, 0xA36045EC, 0xABCDC045, 0xB4D5A2CC)
	IIDIMessage           = NewTUID(0x936F033B, 0xC6C047DB, 0xBB0882F8, 0x13C1E613)
	IIDIAttributeList     = NewTUID(0x1E5F0AEB, 0xCC7F4533, 0xA2544011, 0x38AD5EE4)
	IIDIParameterChanges  = NewTUID(0xA4779663, 0x0BB64A56, 0xB44384A8, 0x466FEB9D)
)

// CategoryAudioEffect is the factory category naming a processing component.
const CategoryAudioEffect = "Audio Module Class"
