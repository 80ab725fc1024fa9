// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// knownBackends are the audio backend names the engine accepts.
var knownBackends = []string{
	"auto", "wasapi", "alsa", "coreaudio", "pulseaudio", "jack", "null",
}

// MaxBlockSize caps the frames-per-block the engine preallocates for. The
// resampler and scratch buffers are sized against it; larger configured
// blocks are rejected here rather than at stream construction.
const MaxBlockSize = 2048

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateAudioSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateMetricsSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateAudioSettings(settings *Settings) error {
	audio := &settings.Audio

	backend := strings.ToLower(audio.Backend)
	if !slices.Contains(knownBackends, backend) {
		return fmt.Errorf("audio.backend: unknown backend %q", audio.Backend)
	}
	audio.Backend = backend

	if audio.SampleRate < 8000 || audio.SampleRate > 192000 {
		return fmt.Errorf("audio.samplerate: %d is outside 8000..192000", audio.SampleRate)
	}
	if audio.BlockSize <= 0 || audio.BlockSize > MaxBlockSize {
		return fmt.Errorf("audio.blocksize: %d is outside 1..%d", audio.BlockSize, MaxBlockSize)
	}
	if audio.Channels < 1 || audio.Channels > 2 {
		return fmt.Errorf("audio.channels: %d is outside 1..2", audio.Channels)
	}
	return nil
}

func validateMetricsSettings(settings *Settings) error {
	if !settings.Metrics.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(settings.Metrics.Listen); err != nil {
		return fmt.Errorf("metrics.listen: %w", err)
	}
	return nil
}
