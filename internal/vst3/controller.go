package vst3

import (
	"runtime"
	"unsafe"
)

// IEditController is the plugin object owning the editor view and parameter
// automation. Vtable layout: FUnknown, IPluginBase, then the controller
// methods.
type IEditController struct {
	FUnknown
}

const (
	ctrlSlotSetComponentState      = 5
	ctrlSlotSetState               = 6
	ctrlSlotGetState               = 7
	ctrlSlotGetParameterCount      = 8
	ctrlSlotGetParameterInfo       = 9
	ctrlSlotGetParamStringByValue  = 10
	ctrlSlotGetParamValueByString  = 11
	ctrlSlotNormalizedParamToPlain = 12
	ctrlSlotPlainParamToNormalized = 13
	ctrlSlotGetParamNormalized     = 14
	ctrlSlotSetParamNormalized     = 15
	ctrlSlotSetComponentHandler    = 16
	ctrlSlotCreateView             = 17
)

// ControllerFromUnknown retypes a carrier known to hold an IEditController.
func ControllerFromUnknown(u FUnknown) IEditController {
	return IEditController{FUnknown: u}
}

// Initialize passes the host context to the controller. Must happen after
// the connection points are cross-connected.
func (c IEditController) Initialize(hostContext unsafe.Pointer) error {
	return c.call(baseSlotInitialize, uintptr(hostContext)).Err()
}

// Terminate reverses Initialize.
func (c IEditController) Terminate() error {
	return c.call(baseSlotTerminate).Err()
}

// ParameterCount returns the number of exported parameters.
func (c IEditController) ParameterCount() int32 {
	return int32(c.callRaw(ctrlSlotGetParameterCount))
}

// SetComponentHandler installs the host's component-handler object.
func (c IEditController) SetComponentHandler(handler unsafe.Pointer) error {
	return c.call(ctrlSlotSetComponentHandler, uintptr(handler)).Err()
}

// CreateView asks the controller for its editor view. Returns a nil view
// without error when the plugin has no editor.
func (c IEditController) CreateView(name string) IPlugView {
	cname := cString(name)
	ptr := c.callRaw(ctrlSlotCreateView, uintptr(unsafe.Pointer(&cname[0])))
	runtime.KeepAlive(cname)
	if ptr == 0 {
		return IPlugView{}
	}
	return IPlugView{FUnknown: FUnknown{ptr: unsafe.Pointer(ptr)}}
}
