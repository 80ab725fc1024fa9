package audiocore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSincResamplerRejectsBadConfig(t *testing.T) {
	_, err := NewSincResampler(0, 48000, 2)
	assert.Error(t, err)
	_, err = NewSincResampler(48000, 0, 2)
	assert.Error(t, err)
	// Ratio above 2 would overflow the bounded output block.
	_, err = NewSincResampler(10000, 30000, 2)
	assert.Error(t, err)
	_, err = NewSincResampler(48000, 48000, 5)
	assert.Error(t, err)
}

func TestSincResamplerSilence(t *testing.T) {
	r, err := NewSincResampler(48000, 48000, 2)
	require.NoError(t, err)

	in := planar(2, 480)
	total := 0
	for block := 0; block < 100; block++ {
		out, n := r.Process(in, 480)
		total += n
		for c := 0; c < 2; c++ {
			for i := 0; i < n; i++ {
				assert.LessOrEqual(t, float64(math.Abs(float64(out[c][i]))), 1e-4)
			}
		}
	}
	// Unity ratio: one output sample per input sample.
	assert.InDelta(t, 100*480, total, 2)
}

func TestSincResamplerUnityRatioSine(t *testing.T) {
	r, err := NewSincResampler(48000, 48000, 1)
	require.NoError(t, err)

	const freq = 440.0
	in := planar(1, 480)
	var peak float64
	sample := 0
	for block := 0; block < 20; block++ {
		for i := range in[0] {
			in[0][i] = float32(math.Sin(2 * math.Pi * freq * float64(sample) / 48000))
			sample++
		}
		out, n := r.Process(in, 480)
		if block < 4 {
			continue // group delay and window warmup
		}
		for i := 0; i < n; i++ {
			if v := math.Abs(float64(out[0][i])); v > peak {
				peak = v
			}
		}
	}
	assert.InDelta(t, 1.0, peak, 0.01)
}

func TestSincResamplerHalfGainSine(t *testing.T) {
	// The passthrough-gain scenario: a 0.5x sine must come out with peak
	// in [0.49, 0.51] after resampling.
	r, err := NewSincResampler(48000, 44100, 1)
	require.NoError(t, err)

	in := planar(1, 480)
	var peak float64
	sample := 0
	for block := 0; block < 40; block++ {
		for i := range in[0] {
			in[0][i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(sample)/48000))
			sample++
		}
		out, n := r.Process(in, 480)
		if block < 4 {
			continue
		}
		for i := 0; i < n; i++ {
			if v := math.Abs(float64(out[0][i])); v > peak {
				peak = v
			}
		}
	}
	assert.GreaterOrEqual(t, peak, 0.49)
	assert.LessOrEqual(t, peak, 0.51)
}

func TestSincResamplerRatioProducesExpectedCounts(t *testing.T) {
	cases := []struct {
		inRate, outRate int
	}{
		{48000, 44100},
		{44100, 48000},
		{48000, 96000},
		{96000, 48000},
	}
	for _, tc := range cases {
		r, err := NewSincResampler(tc.inRate, tc.outRate, 1)
		require.NoError(t, err)
		in := planar(1, 480)
		total := 0
		const blocks = 200
		for b := 0; b < blocks; b++ {
			out, n := r.Process(in, 480)
			// Output block bounded by twice the input block.
			require.LessOrEqual(t, n, 2*480+2)
			_ = out
			total += n
		}
		expected := float64(blocks*480) * r.Ratio()
		assert.InDelta(t, expected, float64(total), 4,
			"rates %d -> %d", tc.inRate, tc.outRate)
	}
}

func TestSincResamplerArbitraryBlockLengths(t *testing.T) {
	r, err := NewSincResampler(48000, 48000, 1)
	require.NoError(t, err)
	in := planar(1, MaxBlockSize)
	for _, frames := range []int{1, 7, 128, 479, 480, 481, 2047, MaxBlockSize} {
		_, n := r.Process(in, frames)
		assert.LessOrEqual(t, n, 2*frames+2)
	}
}

func TestSincResamplerDCGain(t *testing.T) {
	r, err := NewSincResampler(48000, 48000, 1)
	require.NoError(t, err)
	in := planar(1, 480)
	for i := range in[0] {
		in[0][i] = 0.5
	}
	var last float32
	for b := 0; b < 10; b++ {
		out, n := r.Process(in, 480)
		if n > 0 {
			last = out[0][n-1]
		}
	}
	assert.InDelta(t, 0.5, float64(last), 1e-3)
}

func TestSincResamplerReset(t *testing.T) {
	r, err := NewSincResampler(48000, 48000, 1)
	require.NoError(t, err)
	in := planar(1, 480)
	for i := range in[0] {
		in[0][i] = 1
	}
	r.Process(in, 480)
	r.Reset()

	zero := planar(1, 480)
	out, n := r.Process(zero, 480)
	for i := 0; i < n; i++ {
		assert.Zero(t, out[0][i])
	}
}

func BenchmarkSincResamplerBlock(b *testing.B) {
	r, err := NewSincResampler(48000, 44100, 2)
	if err != nil {
		b.Fatal(err)
	}
	in := planar(2, 480)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Process(in, 480)
	}
}
