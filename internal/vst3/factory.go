package vst3

import "unsafe"

// IPluginFactory enumerates and instantiates the classes a module exports.
type IPluginFactory struct {
	FUnknown
}

// IPluginFactory vtable layout after the FUnknown slots.
const (
	factorySlotGetFactoryInfo = 3
	factorySlotCountClasses   = 4
	factorySlotGetClassInfo   = 5
	factorySlotCreateInstance = 6
)

// FactoryInfo reads the vendor block.
func (f IPluginFactory) FactoryInfo() (PFactoryInfo, error) {
	var info PFactoryInfo
	res := f.call(factorySlotGetFactoryInfo, uintptr(unsafe.Pointer(&info)))
	return info, res.Err()
}

// CountClasses returns the number of exported classes.
func (f IPluginFactory) CountClasses() int32 {
	return int32(f.callRaw(factorySlotCountClasses))
}

// ClassInfo reads and decodes the class descriptor at index.
func (f IPluginFactory) ClassInfo(index int32) (ClassInfo, error) {
	var raw PClassInfo
	res := f.call(factorySlotGetClassInfo, uintptr(index), uintptr(unsafe.Pointer(&raw)))
	if err := res.Err(); err != nil {
		return ClassInfo{}, err
	}
	return raw.Decode(), nil
}

// CreateInstance instantiates class cid viewed through interface iid. The
// returned carrier owns one reference.
func (f IPluginFactory) CreateInstance(cid, iid TUID) (FUnknown, error) {
	var out unsafe.Pointer
	res := f.call(factorySlotCreateInstance,
		uintptr(unsafe.Pointer(&cid)),
		uintptr(unsafe.Pointer(&iid)),
		uintptr(unsafe.Pointer(&out)))
	if err := res.Err(); err != nil {
		return FUnknown{}, err
	}
	if out == nil {
		return FUnknown{}, ResultNoInterface
	}
	return FUnknown{ptr: out}, nil
}
