package vst3

import "unsafe"

// IComponent is the plugin object owning audio processing and bus topology.
// Vtable layout: FUnknown, then IPluginBase (initialize, terminate), then
// the component methods.
type IComponent struct {
	FUnknown
}

const (
	// IPluginBase
	baseSlotInitialize = 3
	baseSlotTerminate  = 4

	// IComponent
	compSlotGetControllerClassID = 5
	compSlotSetIOMode            = 6
	compSlotGetBusCount          = 7
	compSlotGetBusInfo           = 8
	compSlotGetRoutingInfo       = 9
	compSlotActivateBus          = 10
	compSlotSetActive            = 11
	compSlotSetState             = 12
	compSlotGetState             = 13
)

// ComponentFromUnknown retypes a carrier known to hold an IComponent.
func ComponentFromUnknown(u FUnknown) IComponent { return IComponent{FUnknown: u} }

// Initialize passes the host context (an IHostApplication viewed as
// FUnknown) to the plugin.
func (c IComponent) Initialize(hostContext unsafe.Pointer) error {
	return c.call(baseSlotInitialize, uintptr(hostContext)).Err()
}

// Terminate reverses Initialize.
func (c IComponent) Terminate() error {
	return c.call(baseSlotTerminate).Err()
}

// ControllerClassID asks the component for the class identifier of its
// separate edit controller. ResultFalse (no separate controller; query the
// component instead) surfaces as an error holding that status.
func (c IComponent) ControllerClassID() (TUID, error) {
	var cid TUID
	res := c.call(compSlotGetControllerClassID, uintptr(unsafe.Pointer(&cid)))
	if err := res.Err(); err != nil {
		return TUID{}, err
	}
	if cid.IsZero() {
		return TUID{}, ResultFalse
	}
	return cid, nil
}

// SetIOMode declares the host's I/O mode before initialization.
func (c IComponent) SetIOMode(mode int32) Result {
	return c.call(compSlotSetIOMode, uintptr(mode))
}

// BusCount returns the number of buses for the media type and direction.
func (c IComponent) BusCount(mediaType, direction int32) int32 {
	return int32(c.callRaw(compSlotGetBusCount, uintptr(mediaType), uintptr(direction)))
}

// BusInfo reads the bus descriptor at index.
func (c IComponent) BusInfo(mediaType, direction, index int32) (BusInfo, error) {
	var info BusInfo
	res := c.call(compSlotGetBusInfo,
		uintptr(mediaType), uintptr(direction), uintptr(index),
		uintptr(unsafe.Pointer(&info)))
	return info, res.Err()
}

// ActivateBus switches the bus at index on or off.
func (c IComponent) ActivateBus(mediaType, direction, index int32, state bool) Result {
	return c.call(compSlotActivateBus,
		uintptr(mediaType), uintptr(direction), uintptr(index), boolArg(state))
}

// SetActive activates or deactivates the component. Must be called after
// bus activation and before SetProcessing.
func (c IComponent) SetActive(state bool) error {
	return c.call(compSlotSetActive, boolArg(state)).Err()
}

// IConnectionPoint is the peer interface two plugin objects use to exchange
// messages.
type IConnectionPoint struct {
	FUnknown
}

const (
	connSlotConnect    = 3
	connSlotDisconnect = 4
	connSlotNotify     = 5
)

// ConnectionPointFromUnknown retypes a carrier known to hold an
// IConnectionPoint.
func ConnectionPointFromUnknown(u FUnknown) IConnectionPoint {
	return IConnectionPoint{FUnknown: u}
}

// Connect attaches the peer connection point.
func (p IConnectionPoint) Connect(other IConnectionPoint) error {
	return p.call(connSlotConnect, uintptr(other.ptr)).Err()
}

// Disconnect detaches the peer connection point.
func (p IConnectionPoint) Disconnect(other IConnectionPoint) error {
	return p.call(connSlotDisconnect, uintptr(other.ptr)).Err()
}

func boolArg(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}
