// Package render implements the render subcommand: run a WAV file through
// the plugin chain offline and write the processed result.
package render

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/tphakala/plughost/internal/audiocore"
	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/cpuspec"
	"github.com/tphakala/plughost/internal/logging"
	"github.com/tphakala/plughost/internal/plugin"
)

// Command returns the render subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		inputPath  string
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "render [plugin modules...]",
		Short: "Process a WAV file through the plugin chain offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, inputPath, outputPath, args)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "in", "i", "", "Input WAV file")
	cmd.Flags().StringVarP(&outputPath, "out", "o", "output.wav", "Output WAV file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func run(settings *conf.Settings, inputPath, outputPath string, pluginPaths []string) error {
	spec := cpuspec.GetCPUSpec()
	logging.Debug("offline render starting",
		"cpu", spec.BrandName,
		"threads", spec.GetOptimalThreadCount())

	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	decoder := wav.NewDecoder(in)
	if !decoder.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", inputPath)
	}
	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", inputPath, err)
	}
	channels := pcm.Format.NumChannels
	if channels > audiocore.MaxChannels {
		return fmt.Errorf("%d channels exceed the supported maximum of %d", channels, audiocore.MaxChannels)
	}
	inRate := pcm.Format.SampleRate
	outRate := settings.Audio.SampleRate

	processor, err := audiocore.NewOfflineProcessor(inRate, outRate, channels)
	if err != nil {
		return err
	}
	defer processor.Close()

	// Load the chain with offline-sized blocks.
	chain := make([]*plugin.Instance, 0, len(pluginPaths))
	defer func() {
		for _, inst := range chain {
			inst.Drop()
		}
	}()
	for _, path := range pluginPaths {
		inst, err := plugin.Load(path, plugin.Config{
			SampleRate:   float64(inRate),
			MaxBlockSize: audiocore.MaxBlockSize,
		})
		if err != nil {
			return err
		}
		if err := inst.SetProcessing(true); err != nil {
			inst.Drop()
			return err
		}
		chain = append(chain, inst)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	encoder := wav.NewEncoder(out, outRate, 16, channels, 1)

	scale := sampleScale(int(decoder.BitDepth))
	blockSize := settings.Audio.BlockSize
	planar := make([][]float32, channels)
	for c := range planar {
		planar[c] = make([]float32, audiocore.MaxBlockSize)
	}
	outBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: outRate},
		Data:           make([]int, 0, 2*audiocore.MaxBlockSize*channels),
		SourceBitDepth: 16,
	}

	totalFrames := len(pcm.Data) / channels
	started := time.Now()
	for off := 0; off < totalFrames; off += blockSize {
		frames := blockSize
		if off+frames > totalFrames {
			frames = totalFrames - off
		}
		for f := 0; f < frames; f++ {
			for c := 0; c < channels; c++ {
				planar[c][f] = float32(pcm.Data[(off+f)*channels+c]) / scale
			}
		}
		processed, produced := processor.ProcessBlock(chain, planar, frames)
		outBuf.Data = outBuf.Data[:0]
		for f := 0; f < produced; f++ {
			for c := 0; c < channels; c++ {
				outBuf.Data = append(outBuf.Data, clampS16(processed[c][f]))
			}
		}
		if err := encoder.Write(outBuf); err != nil {
			_ = out.Close()
			return fmt.Errorf("error writing %s: %w", outputPath, err)
		}
	}

	if err := encoder.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	logging.Info("render complete",
		"input", inputPath,
		"output", outputPath,
		"frames", totalFrames,
		"plugins", len(chain),
		"elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

func sampleScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

func clampS16(v float32) int {
	scaled := v * 32768
	switch {
	case scaled > 32767:
		scaled = 32767
	case scaled < -32768:
		scaled = -32768
	}
	return int(int16(scaled))
}
