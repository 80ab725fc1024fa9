package vst3

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// IAudioProcessor is the processing capability queried from a component.
type IAudioProcessor struct {
	FUnknown
}

const (
	apSlotSetBusArrangements   = 3
	apSlotGetBusArrangement    = 4
	apSlotCanProcessSampleSize = 5
	apSlotGetLatencySamples    = 6
	apSlotSetupProcessing      = 7
	apSlotSetProcessing        = 8
	apSlotProcess              = 9
	apSlotGetTailSamples       = 10
)

// ProcessorFromUnknown retypes a carrier known to hold an IAudioProcessor.
func ProcessorFromUnknown(u FUnknown) IAudioProcessor {
	return IAudioProcessor{FUnknown: u}
}

// CanProcessSampleSize asks whether the plugin handles the symbolic sample
// size; ResultOK means yes.
func (p IAudioProcessor) CanProcessSampleSize(symbolicSize int32) Result {
	return p.call(apSlotCanProcessSampleSize, uintptr(symbolicSize))
}

// LatencySamples returns the plugin's reported processing latency.
func (p IAudioProcessor) LatencySamples() uint32 {
	return uint32(p.callRaw(apSlotGetLatencySamples))
}

// SetupProcessing hands the plugin its processing configuration. Must be
// called before SetActive(true).
func (p IAudioProcessor) SetupProcessing(setup *ProcessSetup) error {
	return p.call(apSlotSetupProcessing, uintptr(unsafe.Pointer(setup))).Err()
}

// SetProcessing toggles the processing state. Only valid while the
// component is active.
func (p IAudioProcessor) SetProcessing(state bool) error {
	res := p.call(apSlotSetProcessing, boolArg(state))
	// Plugins commonly answer kNotImplemented here; treat it as accepted.
	if res == ResultNotImplemented {
		return nil
	}
	return res.Err()
}

// Process runs one block. Called from the real-time capture thread: no
// allocation, direct slot dispatch. The data record and every buffer it
// references must live at stable addresses for the duration of the call.
func (p IAudioProcessor) Process(data *ProcessData) Result {
	r, _, _ := purego.SyscallN(vtslot(p.ptr, apSlotProcess),
		uintptr(p.ptr), uintptr(unsafe.Pointer(data)))
	return Result(int32(r))
}

// TailSamples returns the plugin's reported tail length.
func (p IAudioProcessor) TailSamples() uint32 {
	return uint32(p.callRaw(apSlotGetTailSamples))
}
