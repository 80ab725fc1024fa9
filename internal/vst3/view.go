package vst3

import (
	"runtime"
	"unsafe"
)

// IPlugView is the plugin's editor view, embedded into a host-owned native
// window.
type IPlugView struct {
	FUnknown
}

const (
	viewSlotIsPlatformTypeSupported = 3
	viewSlotAttached                = 4
	viewSlotRemoved                 = 5
	viewSlotOnWheel                 = 6
	viewSlotOnKeyDown               = 7
	viewSlotOnKeyUp                 = 8
	viewSlotGetSize                 = 9
	viewSlotOnSize                  = 10
	viewSlotOnFocus                 = 11
	viewSlotSetFrame                = 12
	viewSlotCanResize               = 13
	viewSlotCheckSizeConstraint     = 14
)

// IsPlatformTypeSupported asks whether the view can embed into the given
// platform window kind.
func (v IPlugView) IsPlatformTypeSupported(platformType string) Result {
	ct := cString(platformType)
	res := v.call(viewSlotIsPlatformTypeSupported, uintptr(unsafe.Pointer(&ct[0])))
	runtime.KeepAlive(ct)
	return res
}

// Attached hands the native window handle to the view. Only valid after the
// controller is initialized.
func (v IPlugView) Attached(handle unsafe.Pointer, platformType string) error {
	ct := cString(platformType)
	res := v.call(viewSlotAttached, uintptr(handle), uintptr(unsafe.Pointer(&ct[0])))
	runtime.KeepAlive(ct)
	return res.Err()
}

// Removed detaches the view from its window. Must precede the final
// Release while attached.
func (v IPlugView) Removed() error {
	return v.call(viewSlotRemoved).Err()
}

// Size reads the view's current extent.
func (v IPlugView) Size() (ViewRect, error) {
	var rect ViewRect
	res := v.call(viewSlotGetSize, uintptr(unsafe.Pointer(&rect)))
	return rect, res.Err()
}

// OnSize informs the view of the new window extent.
func (v IPlugView) OnSize(rect *ViewRect) error {
	return v.call(viewSlotOnSize, uintptr(unsafe.Pointer(rect))).Err()
}

// SetFrame installs the host's plug-frame callback object.
func (v IPlugView) SetFrame(frame unsafe.Pointer) error {
	return v.call(viewSlotSetFrame, uintptr(frame)).Err()
}

// CanResize asks whether the view supports live resizing.
func (v IPlugView) CanResize() bool {
	return v.call(viewSlotCanResize).OK()
}

// CheckSizeConstraint lets the view rewrite a proposed rect to the nearest
// size it accepts. The rect is updated in place when the view answers OK.
func (v IPlugView) CheckSizeConstraint(rect *ViewRect) Result {
	return v.call(viewSlotCheckSizeConstraint, uintptr(unsafe.Pointer(rect)))
}
