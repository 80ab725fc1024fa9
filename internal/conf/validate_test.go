package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Audio.Backend = "alsa"
	s.Audio.SampleRate = 48000
	s.Audio.BlockSize = 480
	s.Audio.Channels = 2
	return s
}

func TestValidateSettings(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(s *Settings) {}},
		{name: "auto backend", mutate: func(s *Settings) { s.Audio.Backend = "auto" }},
		{name: "backend case folded", mutate: func(s *Settings) { s.Audio.Backend = "JACK" }},
		{name: "unknown backend", mutate: func(s *Settings) { s.Audio.Backend = "asio4all" }, wantErr: true},
		{name: "sample rate too low", mutate: func(s *Settings) { s.Audio.SampleRate = 4000 }, wantErr: true},
		{name: "sample rate too high", mutate: func(s *Settings) { s.Audio.SampleRate = 384000 }, wantErr: true},
		{name: "zero block", mutate: func(s *Settings) { s.Audio.BlockSize = 0 }, wantErr: true},
		{name: "block above max", mutate: func(s *Settings) { s.Audio.BlockSize = MaxBlockSize + 1 }, wantErr: true},
		{name: "block at max", mutate: func(s *Settings) { s.Audio.BlockSize = MaxBlockSize }},
		{name: "zero channels", mutate: func(s *Settings) { s.Audio.Channels = 0 }, wantErr: true},
		{name: "too many channels", mutate: func(s *Settings) { s.Audio.Channels = 3 }, wantErr: true},
		{name: "metrics listen bad", mutate: func(s *Settings) {
			s.Metrics.Enabled = true
			s.Metrics.Listen = "no-port"
		}, wantErr: true},
		{name: "metrics listen good", mutate: func(s *Settings) {
			s.Metrics.Enabled = true
			s.Metrics.Listen = "localhost:8090"
		}},
		{name: "metrics disabled skips listen", mutate: func(s *Settings) {
			s.Metrics.Enabled = false
			s.Metrics.Listen = "garbage"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(s)
			err := ValidateSettings(s)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFoldsBackendCase(t *testing.T) {
	s := validSettings()
	s.Audio.Backend = "CoreAudio"
	assert.NoError(t, ValidateSettings(s))
	assert.Equal(t, "coreaudio", s.Audio.Backend)
}
