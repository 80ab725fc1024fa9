package audiocore

import (
	"unsafe"

	"github.com/tphakala/plughost/internal/vst3"
)

// processBlock is every piece of memory a plugin sees during a process
// call: the ProcessData record, one input and one output bus descriptor,
// the per-bus channel-pointer arrays and the scratch sample buffers they
// point into. Everything is allocated once at engine construction; the
// record's addresses are byte-identical on every block for the lifetime of
// the engine, which is what lets the capture callback run without
// allocating.
type processBlock struct {
	in  [][]float32 // captured samples, one slice per channel
	out [][]float32 // plugin result

	inPtrs  []*float32
	outPtrs []*float32

	inBus  vst3.AudioBusBuffers
	outBus vst3.AudioBusBuffers

	data vst3.ProcessData

	// paramChanges is the host's empty input parameter-changes object,
	// pinned for the engine's lifetime.
	paramChanges *vst3.HostObject
}

func newProcessBlock(channels int) *processBlock {
	b := &processBlock{
		in:      make([][]float32, channels),
		out:     make([][]float32, channels),
		inPtrs:  make([]*float32, channels),
		outPtrs: make([]*float32, channels),
	}
	for c := 0; c < channels; c++ {
		b.in[c] = make([]float32, MaxBlockSize)
		b.out[c] = make([]float32, MaxBlockSize)
		b.inPtrs[c] = &b.in[c][0]
		b.outPtrs[c] = &b.out[c][0]
	}

	b.inBus = vst3.AudioBusBuffers{
		NumChannels:    int32(channels),
		ChannelBuffers: unsafe.Pointer(&b.inPtrs[0]),
	}
	b.outBus = vst3.AudioBusBuffers{
		NumChannels:    int32(channels),
		ChannelBuffers: unsafe.Pointer(&b.outPtrs[0]),
	}

	b.paramChanges = vst3.NewParameterChanges()

	b.data = vst3.ProcessData{
		ProcessMode:           vst3.ProcessModeRealtime,
		SymbolicSampleSize:    vst3.SampleSize32,
		NumInputs:             1,
		NumOutputs:            1,
		Inputs:                &b.inBus,
		Outputs:               &b.outBus,
		InputParameterChanges: b.paramChanges.Ptr(),
		// Output changes, events and the process context stay null; the
		// record tolerates absent optionals and the plugins this host
		// targets accept a null context.
	}
	return b
}

// prepare sets the per-block sample count and clears the output scratch so
// a skipped or empty chain yields silence.
func (b *processBlock) prepare(frames int, mode int32) {
	b.data.NumSamples = int32(frames)
	b.data.ProcessMode = mode
	b.inBus.SilenceFlags = 0
	b.outBus.SilenceFlags = 0
	for c := range b.out {
		clearF32(b.out[c][:frames])
	}
}

// chain copies the output scratch into the input scratch, feeding plugin
// k's result to plugin k+1 without moving either pointer array.
func (b *processBlock) chain(frames int) {
	for c := range b.in {
		copy(b.in[c][:frames], b.out[c][:frames])
	}
}

// release frees the host-side parameter-changes object.
func (b *processBlock) release() {
	if b.paramChanges != nil {
		b.paramChanges.Release()
		b.paramChanges = nil
	}
}

func clearF32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
