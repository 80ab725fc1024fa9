package audiocore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plughost/internal/plugin"
	"github.com/tphakala/plughost/internal/vst3/vst3mock"
)

func loadChain(t *testing.T, gains ...float32) ([]*plugin.Instance, []*vst3mock.Plugin) {
	t.Helper()
	var chain []*plugin.Instance
	var mocks []*vst3mock.Plugin
	for _, gain := range gains {
		mock := vst3mock.New(vst3mock.Options{Gain: gain})
		inst, err := plugin.LoadFromFactory(mock.Factory(), plugin.Config{
			SampleRate:   48000,
			MaxBlockSize: MaxBlockSize,
		})
		require.NoError(t, err)
		require.NoError(t, inst.SetProcessing(true))
		chain = append(chain, inst)
		mocks = append(mocks, mock)
	}
	t.Cleanup(func() {
		for _, inst := range chain {
			inst.Drop()
		}
		for _, mock := range mocks {
			mock.Close()
		}
	})
	return chain, mocks
}

func sineBlock(frames int, amplitude float64, startSample int) [][]float32 {
	out := planar(2, frames)
	for i := 0; i < frames; i++ {
		v := float32(amplitude * math.Sin(2*math.Pi*440*float64(startSample+i)/48000))
		out[0][i] = v
		out[1][i] = v
	}
	return out
}

// The passthrough-gain scenario: a full-scale sine through a 0.5x plugin
// lands with peak amplitude in [0.49, 0.51] after resampling.
func TestOfflineHalfGainPlugin(t *testing.T) {
	chain, mocks := loadChain(t, 0.5)

	proc, err := NewOfflineProcessor(48000, 48000, 2)
	require.NoError(t, err)
	defer proc.Close()

	var peak float64
	sample := 0
	for block := 0; block < 20; block++ {
		in := sineBlock(480, 1.0, sample)
		sample += 480
		out, n := proc.ProcessBlock(chain, in, 480)
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
	assert.NotZero(t, mocks[0].Counters.ProcessCalls.Load())
}

// Two plugins in series compose: 0.5 then 0.5 is 0.25, fed forward through
// the chained scratch copy.
func TestOfflineChainedPlugins(t *testing.T) {
	chain, _ := loadChain(t, 0.5, 0.5)

	proc, err := NewOfflineProcessor(48000, 48000, 2)
	require.NoError(t, err)
	defer proc.Close()

	var peak float64
	sample := 0
	for block := 0; block < 20; block++ {
		in := sineBlock(480, 1.0, sample)
		sample += 480
		out, n := proc.ProcessBlock(chain, in, 480)
		if block < 4 {
			continue
		}
		for i := 0; i < n; i++ {
			if v := math.Abs(float64(out[0][i])); v > peak {
				peak = v
			}
		}
	}
	assert.InDelta(t, 0.25, peak, 0.01)
}

// Load-silence scenario: a pass-gain chain fed silence yields
// silence within resampler ringing tolerance.
func TestOfflineSilenceThroughPlugin(t *testing.T) {
	chain, _ := loadChain(t, 1.0)

	proc, err := NewOfflineProcessor(48000, 48000, 2)
	require.NoError(t, err)
	defer proc.Close()

	in := planar(2, 480)
	produced := 0
	zeros := 0
	for block := 0; block < 100; block++ {
		out, n := proc.ProcessBlock(chain, in, 480)
		for i := 0; i < n; i++ {
			require.LessOrEqual(t, math.Abs(float64(out[0][i])), 1e-4)
			if out[0][i] == 0 {
				zeros++
			}
		}
		produced += n
	}
	assert.InDelta(t, 48000, produced, 2)
	assert.GreaterOrEqual(t, float64(zeros)/float64(produced), 0.95)
}

func TestOfflineEmptyChainIsPassthrough(t *testing.T) {
	proc, err := NewOfflineProcessor(48000, 48000, 1)
	require.NoError(t, err)
	defer proc.Close()

	in := planar(1, 480)
	for i := range in[0] {
		in[0][i] = 0.25
	}
	var last float32
	for block := 0; block < 10; block++ {
		out, n := proc.ProcessBlock(nil, in, 480)
		if n > 0 {
			last = out[0][n-1]
		}
	}
	assert.InDelta(t, 0.25, float64(last), 1e-3)
}

// Plugins read the host's empty parameter-changes object on every call.
func TestOfflineParameterChangesVisible(t *testing.T) {
	chain, mocks := loadChain(t, 1.0)

	proc, err := NewOfflineProcessor(48000, 48000, 2)
	require.NoError(t, err)
	defer proc.Close()

	in := planar(2, 480)
	proc.ProcessBlock(chain, in, 480)
	assert.Equal(t, int32(1), mocks[0].Counters.ParamChangeCounts.Load())
}
