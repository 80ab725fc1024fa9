package vst3

import "unsafe"

// The structs in this file mirror the plugin ABI byte for byte. Field order,
// widths and padding are fixed; adding or reordering fields corrupts the
// plugin. Pointer-typed fields hold addresses owned by either side of the
// protocol and are never followed by the garbage collector.

// PFactoryInfo mirrors Steinberg::PFactoryInfo.
type PFactoryInfo struct {
	Vendor [64]byte
	URL    [256]byte
	Email  [128]byte
	Flags  int32
}

// PClassInfo mirrors Steinberg::PClassInfo.
type PClassInfo struct {
	CID         TUID
	Cardinality int32
	Category    [32]byte
	Name        [64]byte
}

// ClassInfo is the decoded, Go-friendly form of PClassInfo.
type ClassInfo struct {
	CID         TUID
	Cardinality int32
	Category    string
	Name        string
}

// Decode converts the fixed C buffers into Go strings.
func (ci *PClassInfo) Decode() ClassInfo {
	return ClassInfo{
		CID:         ci.CID,
		Cardinality: ci.Cardinality,
		Category:    cFieldToString(ci.Category[:]),
		Name:        cFieldToString(ci.Name[:]),
	}
}

// BusInfo mirrors Steinberg::Vst::BusInfo.
type BusInfo struct {
	MediaType    int32
	Direction    int32
	ChannelCount int32
	Name         String128
	BusType      int32
	Flags        uint32
}

// ProcessSetup mirrors Steinberg::Vst::ProcessSetup. The trailing double
// forces 8-byte alignment, so the compiler-inserted hole after
// MaxSamplesPerBlock is made explicit.
type ProcessSetup struct {
	ProcessMode        int32
	SymbolicSampleSize int32
	MaxSamplesPerBlock int32
	_                  int32
	SampleRate         float64
}

// AudioBusBuffers mirrors Steinberg::Vst::AudioBusBuffers for 32-bit
// samples. ChannelBuffers is the address of an array of per-channel sample
// pointers; the array and the buffers it points to are owned by the host
// and must outlive every process call that sees them.
type AudioBusBuffers struct {
	NumChannels    int32
	_              int32
	SilenceFlags   uint64
	ChannelBuffers unsafe.Pointer
}

// ProcessData mirrors Steinberg::Vst::ProcessData.
type ProcessData struct {
	ProcessMode            int32
	SymbolicSampleSize     int32
	NumSamples             int32
	NumInputs              int32
	NumOutputs             int32
	_                      int32
	Inputs                 *AudioBusBuffers
	Outputs                *AudioBusBuffers
	InputParameterChanges  unsafe.Pointer
	OutputParameterChanges unsafe.Pointer
	InputEvents            unsafe.Pointer
	OutputEvents           unsafe.Pointer
	ProcessContext         unsafe.Pointer
}

// ViewRect mirrors Steinberg::ViewRect.
type ViewRect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Width returns the horizontal extent of the rect.
func (r ViewRect) Width() int32 { return r.Right - r.Left }

// Height returns the vertical extent of the rect.
func (r ViewRect) Height() int32 { return r.Bottom - r.Top }
