package vst3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTUIDCOMByteOrder(t *testing.T) {
	// a0 a1 a2 a3 b2 b3 b0 b1 c3 c2 c1 c0 d3 d2 d1 d0, subscript 0 being
	// the least significant byte of each group.
	got := NewTUIDCOM(0x11223344, 0x55667788, 0x99AABBCC, 0xDDEEFF00)
	want := TUID{
		0x44, 0x33, 0x22, 0x11,
		0x66, 0x55, 0x88, 0x77,
		0x99, 0xAA, 0xBB, 0xCC,
		0xDD, 0xEE, 0xFF, 0x00,
	}
	assert.Equal(t, want, got)
}

func TestNewTUIDBigEndianByteOrder(t *testing.T) {
	got := NewTUIDBigEndian(0x11223344, 0x55667788, 0x99AABBCC, 0xDDEEFF00)
	want := TUID{
		0x11, 0x22, 0x33, 0x44,
		0x55, 0x66, 0x77, 0x88,
		0x99, 0xAA, 0xBB, 0xCC,
		0xDD, 0xEE, 0xFF, 0x00,
	}
	assert.Equal(t, want, got)
}

func TestTUIDRoundTrip(t *testing.T) {
	// Encoding then decoding the four groups is the identity, whichever
	// layout this platform uses.
	cases := [][4]uint32{
		{0, 0, 0, 0},
		{0x7A4D811C, 0x52114A1F, 0xAED9D2EE, 0x0B43BF9F},
		{0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF},
		{0x00000001, 0x80000000, 0x12345678, 0x9ABCDEF0},
	}
	for _, c := range cases {
		id := NewTUID(c[0], c[1], c[2], c[3])
		a, b, cc, d := id.Parts()
		assert.Equal(t, c[0], a)
		assert.Equal(t, c[1], b)
		assert.Equal(t, c[2], cc)
		assert.Equal(t, c[3], d)
	}
}

func TestKnownInterfaceIdentifiers(t *testing.T) {
	// Pin the identifier groups the lifecycle controller queries on every
	// plugin to the plugin SDK's published values, through the non-COM
	// encoding so the bytes are platform independent. A typo in any of
	// these turns the matching query_interface into kNoInterface against
	// every real plugin.
	require.Equal(t,
		TUID{0x7A, 0x4D, 0x81, 0x1C, 0x52, 0x11, 0x4A, 0x1F, 0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F},
		NewTUIDBigEndian(IIDIPluginFactory.Parts()),
		"IPluginFactory")
	require.Equal(t,
		TUID{0xE8, 0x31, 0xFF, 0x31, 0xF2, 0xD5, 0x43, 0x01, 0x92, 0x8E, 0xBB, 0xEE, 0x25, 0x69, 0x78, 0x02},
		NewTUIDBigEndian(IIDIComponent.Parts()),
		"IComponent")
	require.Equal(t,
		TUID{0x42, 0x04, 0x3F, 0x99, 0xB7, 0xDA, 0x45, 0x3C, 0xA5, 0x69, 0xE7, 0x9D, 0x9A, 0xAE, 0xC3, 0x3D},
		NewTUIDBigEndian(IIDIAudioProcessor.Parts()),
		"IAudioProcessor")
	require.Equal(t,
		TUID{0xDC, 0xD7, 0xBB, 0xE3, 0x77, 0x42, 0x44, 0x8D, 0xA8, 0x74, 0xAA, 0xCC, 0x97, 0x9C, 0x75, 0x9E},
		NewTUIDBigEndian(IIDIEditController.Parts()),
		"IEditController")
	require.Equal(t,
		TUID{0x70, 0xA4, 0x15, 0x6F, 0x6E, 0x6E, 0x40, 0x26, 0x98, 0x91, 0x48, 0xBF, 0xAA, 0x60, 0xD8, 0xD1},
		NewTUIDBigEndian(IIDIConnectionPoint.Parts()),
		"IConnectionPoint")
}

func TestTUIDIsZero(t *testing.T) {
	assert.True(t, TUID{}.IsZero())
	assert.False(t, IIDFUnknown.IsZero())
}

func TestResultStrings(t *testing.T) {
	assert.Equal(t, "ok", ResultOK.Error())
	assert.Equal(t, "no interface", ResultNoInterface.Error())
	assert.NoError(t, ResultOK.Err())
	assert.Error(t, ResultFalse.Err())
	assert.Error(t, ResultNotInitialized.Err())
}

func TestResultCodesMatchCOMValues(t *testing.T) {
	noInterface, invalidArgument := ResultNoInterface, ResultInvalidArgument
	notImplemented, internalError := ResultNotImplemented, ResultInternalError
	notInitialized, outOfMemory := ResultNotInitialized, ResultOutOfMemory
	assert.Equal(t, uint32(0x80004002), uint32(noInterface))
	assert.Equal(t, uint32(0x80070057), uint32(invalidArgument))
	assert.Equal(t, uint32(0x80004001), uint32(notImplemented))
	assert.Equal(t, uint32(0x80004005), uint32(internalError))
	assert.Equal(t, uint32(0x8000FFFF), uint32(notInitialized))
	assert.Equal(t, uint32(0x8007000E), uint32(outOfMemory))
}
