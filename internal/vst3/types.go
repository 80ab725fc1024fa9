package vst3

import "fmt"

// Result is the VST3 status code returned by nearly every interface method.
// The values are shared with COM, including the mixed success/failure split:
// ResultFalse is a valid "no" answer, not a failure.
type Result int32

const (
	ResultOK              Result = 0x00000000
	ResultFalse           Result = 0x00000001
	ResultNoInterface     Result = -0x7FFFBFFE // 0x80004002
	ResultInvalidArgument Result = -0x7FF8FFA9 // 0x80070057
	ResultNotImplemented  Result = -0x7FFFBFFF // 0x80004001
	ResultInternalError   Result = -0x7FFFBFFB // 0x80004005
	ResultNotInitialized  Result = -0x7FFF0001 // 0x8000FFFF
	ResultOutOfMemory     Result = -0x7FF8FFF2 // 0x8007000E
)

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r == ResultOK }

// Err maps the status to a Go error: nil for ResultOK, the Result itself
// otherwise. ResultFalse is an error under this mapping; call sites that
// treat it as a soft "no" must check for it before calling Err.
func (r Result) Err() error {
	if r == ResultOK {
		return nil
	}
	return r
}

// Error implements the error interface so a plugin status can be surfaced
// as-is through the lifecycle controller.
func (r Result) Error() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultFalse:
		return "false"
	case ResultNoInterface:
		return "no interface"
	case ResultInvalidArgument:
		return "invalid argument"
	case ResultNotImplemented:
		return "not implemented"
	case ResultInternalError:
		return "internal error"
	case ResultNotInitialized:
		return "not initialized"
	case ResultOutOfMemory:
		return "out of memory"
	default:
		return fmt.Sprintf("vst3 status 0x%08X", uint32(r))
	}
}

// Media types for bus queries.
const (
	MediaTypeAudio int32 = 0
	MediaTypeEvent int32 = 1
)

// Bus directions.
const (
	BusDirectionInput  int32 = 0
	BusDirectionOutput int32 = 1
)

// Bus types.
const (
	BusTypeMain int32 = 0
	BusTypeAux  int32 = 1
)

// Component I/O modes passed to IComponent.SetIOMode.
const (
	IoModeSimple            int32 = 0
	IoModeAdvanced          int32 = 1
	IoModeOfflineProcessing int32 = 2
)

// Process modes for ProcessSetup and ProcessData.
const (
	ProcessModeRealtime int32 = 0
	ProcessModePrefetch int32 = 1
	ProcessModeOffline  int32 = 2
)

// Symbolic sample sizes.
const (
	SampleSize32 int32 = 0
	SampleSize64 int32 = 1
)

// ViewType strings accepted by IEditController.CreateView.
const ViewTypeEditor = "editor"

// Platform type strings passed to IPlugView.Attached. The window handle
// must match: HWND, NSView* or an X11 window ID respectively.
const (
	PlatformTypeHWND   = "HWND"
	PlatformTypeNSView = "NSView"
	PlatformTypeX11    = "X11EmbedWindowID"
)

// String128 is the fixed UTF-16 string buffer used across the ABI.
type String128 [128]uint16

// ParamID identifies a controller parameter.
type ParamID uint32

// ParamValue is a normalized parameter value in [0, 1].
type ParamValue float64
