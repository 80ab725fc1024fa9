package vst3

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// FUnknown is the base carrier for any interface pointer obtained from a
// plugin. The pointee's first machine word addresses the vtable, an ordered
// array of function pointers. Derived interfaces extend the array; the
// first three slots are always QueryInterface, AddRef and Release.
//
// An FUnknown (and every wrapper embedding it) represents one owning
// reference. Whoever holds it must eventually call Release exactly once.
type FUnknown struct {
	ptr unsafe.Pointer
}

// FUnknown vtable slots shared by every interface.
const (
	slotQueryInterface = 0
	slotAddRef         = 1
	slotRelease        = 2
)

// Wrap adopts a raw interface pointer without touching its reference count.
func Wrap(p unsafe.Pointer) FUnknown { return FUnknown{ptr: p} }

// Ptr returns the raw interface pointer for handing back to plugin code.
func (u FUnknown) Ptr() unsafe.Pointer { return u.ptr }

// IsNil reports whether the carrier holds no object.
func (u FUnknown) IsNil() bool { return u.ptr == nil }

// vtslot reads function pointer i from the object's vtable.
func vtslot(obj unsafe.Pointer, i int) uintptr {
	vtbl := *(*unsafe.Pointer)(obj)
	return *(*uintptr)(unsafe.Add(vtbl, uintptr(i)*unsafe.Sizeof(uintptr(0))))
}

// QueryInterface asks the object for a view typed as iid. On success the
// returned carrier holds a new owning reference.
func (u FUnknown) QueryInterface(iid TUID) (FUnknown, error) {
	var out unsafe.Pointer
	r, _, _ := purego.SyscallN(vtslot(u.ptr, slotQueryInterface),
		uintptr(u.ptr),
		uintptr(unsafe.Pointer(&iid)),
		uintptr(unsafe.Pointer(&out)))
	if res := Result(int32(r)); !res.OK() {
		return FUnknown{}, res
	}
	if out == nil {
		return FUnknown{}, ResultNoInterface
	}
	return FUnknown{ptr: out}, nil
}

// AddRef increments the object's reference count and returns the new count.
func (u FUnknown) AddRef() uint32 {
	r, _, _ := purego.SyscallN(vtslot(u.ptr, slotAddRef), uintptr(u.ptr))
	return uint32(r)
}

// Release decrements the reference count; the object destroys itself at
// zero. Returns the remaining count. Safe on a nil carrier.
func (u FUnknown) Release() uint32 {
	if u.ptr == nil {
		return 0
	}
	r, _, _ := purego.SyscallN(vtslot(u.ptr, slotRelease), uintptr(u.ptr))
	return uint32(r)
}

// call dispatches vtable slot i with the object pointer prepended. Not used
// on the audio path; the processor's Process has its own direct dispatch.
func (u FUnknown) call(i int, args ...uintptr) Result {
	full := make([]uintptr, 0, len(args)+1)
	full = append(full, uintptr(u.ptr))
	full = append(full, args...)
	r, _, _ := purego.SyscallN(vtslot(u.ptr, i), full...)
	return Result(int32(r))
}

// callRaw is call without the Result conversion, for slots returning
// counts or pointers.
func (u FUnknown) callRaw(i int, args ...uintptr) uintptr {
	full := make([]uintptr, 0, len(args)+1)
	full = append(full, uintptr(u.ptr))
	full = append(full, args...)
	r, _, _ := purego.SyscallN(vtslot(u.ptr, i), full...)
	return r
}
