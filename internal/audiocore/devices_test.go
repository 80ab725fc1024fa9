package audiocore

import (
	"testing"

	"github.com/gen2brain/malgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/observability/metrics"
)

func TestBackendFromName(t *testing.T) {
	cases := []struct {
		name    string
		want    malgo.Backend
		wantErr bool
	}{
		{name: "alsa", want: malgo.BackendAlsa},
		{name: "WASAPI", want: malgo.BackendWasapi},
		{name: "coreaudio", want: malgo.BackendCoreaudio},
		{name: "pulseaudio", want: malgo.BackendPulseaudio},
		{name: "jack", want: malgo.BackendJack},
		{name: "null", want: malgo.BackendNull},
		{name: "asio", wantErr: true},
		{name: "bogus", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := backendFromName(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBackendExclusive(t *testing.T) {
	assert.True(t, backendExclusive("jack"))
	assert.True(t, backendExclusive("JACK"))
	assert.False(t, backendExclusive("alsa"))
	assert.False(t, backendExclusive("wasapi"))
}

func TestSelectDevice(t *testing.T) {
	devices := []DeviceInfo{
		{Index: 0, Name: "USB Audio Interface"},
		{Index: 1, Name: "Built-in Audio", IsDefault: true},
		{Index: 2, Name: "HDMI Output"},
	}

	got, err := selectDevice(devices, "")
	require.NoError(t, err)
	assert.Equal(t, "Built-in Audio", got.Name)

	got, err = selectDevice(devices, "default")
	require.NoError(t, err)
	assert.Equal(t, "Built-in Audio", got.Name)

	got, err = selectDevice(devices, "HDMI Output")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Index)

	// Prefix match for decorated backend names.
	got, err = selectDevice(devices, "USB Audio")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)

	_, err = selectDevice(devices, "Tape Deck")
	assert.Error(t, err)

	_, err = selectDevice(nil, "")
	assert.Error(t, err)
}

func TestSelectDeviceNoDefaultFallsBackToFirst(t *testing.T) {
	devices := []DeviceInfo{{Name: "Only Card"}}
	got, err := selectDevice(devices, "")
	require.NoError(t, err)
	assert.Equal(t, "Only Card", got.Name)
}

func testSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Audio.Backend = "null"
	s.Audio.SampleRate = DefaultSampleRate
	s.Audio.BlockSize = DefaultBlockSize
	s.Audio.Channels = DefaultChannels
	return s
}

func TestEngineNewValidatesBlockSize(t *testing.T) {
	m, err := metrics.NewEngineMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	s := testSettings()
	s.Audio.BlockSize = MaxBlockSize + 1
	_, err = New(s, m)
	assert.Error(t, err)
}

func TestEngineAccessors(t *testing.T) {
	m, err := metrics.NewEngineMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	e, err := New(testSettings(), m)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, "null", e.CurrentBackend())
	assert.Zero(t, e.Registry().Len())
}
