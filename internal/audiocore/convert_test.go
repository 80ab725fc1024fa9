package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planar(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	return out
}

func TestDeinterleaveS16LE(t *testing.T) {
	// Two stereo frames: L=16384, R=-16384; L=32767, R=-32768.
	src := []byte{
		0x00, 0x40, 0x00, 0xC0,
		0xFF, 0x7F, 0x00, 0x80,
	}
	dst := planar(2, 4)
	frames := DeinterleaveS16LE(src, 2, dst)
	require.Equal(t, 2, frames)

	assert.InDelta(t, 0.5, dst[0][0], 1e-4)
	assert.InDelta(t, -0.5, dst[1][0], 1e-4)
	assert.InDelta(t, 1.0, dst[0][1], 1e-3)
	assert.InDelta(t, -1.0, dst[1][1], 1e-6)
}

func TestDeinterleaveBounds(t *testing.T) {
	dst := planar(2, 2)
	// Five frames offered, two fit.
	src := make([]byte, 5*2*2)
	assert.Equal(t, 2, DeinterleaveS16LE(src, 2, dst))

	assert.Zero(t, DeinterleaveS16LE(src, 0, dst))
	assert.Zero(t, DeinterleaveS16LE(nil, 2, dst))
}

func TestInterleaveToS16LEClamps(t *testing.T) {
	src := []float32{0.5, -0.5, 1.5, -1.5}
	dst := make([]byte, 8)
	InterleaveToS16LE(src, dst)

	read := func(i int) int16 {
		return int16(uint16(dst[2*i]) | uint16(dst[2*i+1])<<8)
	}
	assert.Equal(t, int16(16384), read(0))
	assert.Equal(t, int16(-16384), read(1))
	assert.Equal(t, int16(32767), read(2))
	assert.Equal(t, int16(-32768), read(3))
}

func TestInterleave(t *testing.T) {
	src := [][]float32{{1, 3, 5}, {2, 4, 6}}
	dst := make([]float32, 6)
	n := Interleave(src, 3, dst)
	assert.Equal(t, 6, n)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, dst)
}

func TestS16RoundTrip(t *testing.T) {
	src := []byte{0x34, 0x12, 0xCD, 0xAB}
	dst := planar(2, 1)
	require.Equal(t, 1, DeinterleaveS16LE(src, 2, dst))

	back := make([]byte, 4)
	InterleaveToS16LE([]float32{dst[0][0], dst[1][0]}, back)
	assert.Equal(t, src, back)
}

func BenchmarkDeinterleaveS16LE(b *testing.B) {
	src := make([]byte, 480*2*2)
	dst := planar(2, MaxBlockSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DeinterleaveS16LE(src, 2, dst)
	}
}
