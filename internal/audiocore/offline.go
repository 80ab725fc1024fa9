package audiocore

import (
	"github.com/tphakala/plughost/internal/plugin"
	"github.com/tphakala/plughost/internal/vst3"
)

// OfflineProcessor runs the same process-block plumbing as the realtime
// engine without any devices: file in, plugin chain, resampler, file out.
// It builds its own preallocated block of the kind the engine uses, so the
// buffer-stability contract holds for offline plugins too.
type OfflineProcessor struct {
	block     *processBlock
	resampler *SincResampler
	channels  int
}

// NewOfflineProcessor builds the offline path for the given rates.
func NewOfflineProcessor(inRate, outRate, channels int) (*OfflineProcessor, error) {
	resampler, err := NewSincResampler(inRate, outRate, channels)
	if err != nil {
		return nil, err
	}
	return &OfflineProcessor{
		block:     newProcessBlock(channels),
		resampler: resampler,
		channels:  channels,
	}, nil
}

// ProcessBlock feeds one block of planar input through the chain and
// returns the processor-owned resampled planar output, valid until the
// next call. frames must not exceed MaxBlockSize.
func (o *OfflineProcessor) ProcessBlock(chain []*plugin.Instance, in [][]float32, frames int) ([][]float32, int) {
	if frames > MaxBlockSize {
		frames = MaxBlockSize
	}
	for c := 0; c < o.channels; c++ {
		copy(o.block.in[c][:frames], in[c][:frames])
	}
	o.block.prepare(frames, vst3.ProcessModeOffline)
	first := true
	for _, p := range chain {
		if p.State() != plugin.StateProcessing {
			continue
		}
		if !first {
			o.block.chain(frames)
		}
		_ = p.Processor().Process(&o.block.data)
		first = false
	}
	if first {
		// Empty chain: render is a passthrough, unlike the realtime loop
		// where silence is the contract.
		for c := 0; c < o.channels; c++ {
			copy(o.block.out[c][:frames], o.block.in[c][:frames])
		}
	}
	return o.resampler.Process(o.block.out, frames)
}

// Close releases the block's host-side objects.
func (o *OfflineProcessor) Close() {
	o.block.release()
}
