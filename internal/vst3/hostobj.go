package vst3

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Host-side objects the plugin calls back into. Each object's C-visible
// memory is a single vtable word; all Go-side state lives in a registry
// keyed by the object's address, so the callbacks can recover it from the
// leading this-pointer without the plugin ever seeing Go memory layout.
//
// Vtables are built once per interface type from purego.NewCallback
// trampolines, which are process-lifetime, and shared by every object of
// that type.

// hostHeader is the C-visible object layout: one word addressing the vtable.
type hostHeader struct {
	vtable unsafe.Pointer
}

type hostState struct {
	refs      atomic.Int32
	iids      []TUID
	links     map[TUID]*HostObject
	impl      any
	pin       runtime.Pinner
	onDestroy func()
}

// HostObject is the host's owning handle to one callback object. The handle
// itself holds one reference; the plugin's add_ref/release operate on top.
type HostObject struct {
	header *hostHeader
	state  *hostState
}

var (
	hostMu   sync.RWMutex
	hostObjs = make(map[uintptr]*hostState)

	// vtables holds every constructed vtable array alive for the process.
	vtablesMu sync.Mutex
	vtables   [][]uintptr
)

// NewVtable builds a vtable with the shared FUnknown slots followed by the
// interface-specific ones, in declaration order. Parent-interface slots must
// precede child slots, matching the single-inheritance vtable layout. The
// returned address is stable for the process.
func NewVtable(slots ...uintptr) unsafe.Pointer {
	arr := make([]uintptr, 3, 3+len(slots))
	arr[0] = cbQueryInterface
	arr[1] = cbAddRef
	arr[2] = cbRelease
	arr = append(arr, slots...)
	vtablesMu.Lock()
	vtables = append(vtables, arr)
	vtablesMu.Unlock()
	return unsafe.Pointer(&arr[0])
}

// NewHostObject allocates a callback object with the fixed C-visible layout
// (one vtable word) answering to the given identifiers; FUnknown is always
// included. Initial reference count is 1, owned by the returned handle.
func NewHostObject(vtable unsafe.Pointer, impl any, iids ...TUID) *HostObject {
	h := &hostHeader{vtable: vtable}
	st := &hostState{
		iids:  iids,
		links: make(map[TUID]*HostObject),
		impl:  impl,
	}
	st.refs.Store(1)
	st.pin.Pin(h)
	hostMu.Lock()
	hostObjs[uintptr(unsafe.Pointer(h))] = st
	hostMu.Unlock()
	return &HostObject{header: h, state: st}
}

// Ptr returns the interface pointer to hand to the plugin.
func (o *HostObject) Ptr() unsafe.Pointer { return unsafe.Pointer(o.header) }

// Unknown returns the object viewed as a plugin-side carrier, letting tests
// drive it through the same dispatch path the plugin uses.
func (o *HostObject) Unknown() FUnknown { return Wrap(o.Ptr()) }

// Link registers another host object to be returned when the plugin
// queries this object for iid. The link borrows the target; the caller
// keeps the target alive at least as long as this object.
func (o *HostObject) Link(iid TUID, target *HostObject) {
	hostMu.Lock()
	o.state.links[iid] = target
	hostMu.Unlock()
}

// Refs returns the current reference count.
func (o *HostObject) Refs() int32 { return o.state.refs.Load() }

// Release drops the host's owning reference. The object stays registered
// until the plugin has released every reference it took.
func (o *HostObject) Release() {
	releaseHostObj(uintptr(unsafe.Pointer(o.header)))
}

func lookupHostState(this uintptr) *hostState {
	hostMu.RLock()
	st := hostObjs[this]
	hostMu.RUnlock()
	return st
}

func releaseHostObj(this uintptr) uintptr {
	st := lookupHostState(this)
	if st == nil {
		return 0
	}
	n := st.refs.Add(-1)
	if n > 0 {
		return uintptr(n)
	}
	hostMu.Lock()
	delete(hostObjs, this)
	hostMu.Unlock()
	st.pin.Unpin()
	if st.onDestroy != nil {
		st.onDestroy()
	}
	return 0
}

// Shared FUnknown slots. Signatures use uintptr throughout; pointers are
// recovered with unsafe casts on the far side of the trampoline.
var (
	cbQueryInterface = purego.NewCallback(hostQueryInterface)
	cbAddRef         = purego.NewCallback(hostAddRef)
	cbRelease        = purego.NewCallback(hostRelease)
)

func hostQueryInterface(this, iid, obj uintptr) uintptr {
	if obj == 0 {
		return resultArg(ResultInvalidArgument)
	}
	out := (*uintptr)(unsafe.Pointer(obj))
	st := lookupHostState(this)
	if st == nil {
		*out = 0
		return resultArg(ResultNoInterface)
	}
	req := *(*TUID)(unsafe.Pointer(iid))
	if req == IIDFUnknown {
		st.refs.Add(1)
		*out = this
		return resultArg(ResultOK)
	}
	for _, id := range st.iids {
		if req == id {
			st.refs.Add(1)
			*out = this
			return resultArg(ResultOK)
		}
	}
	// Cross-cast to an associated object (e.g. the component handler
	// answering for the host application).
	hostMu.RLock()
	link := st.links[req]
	hostMu.RUnlock()
	if link != nil {
		link.state.refs.Add(1)
		*out = uintptr(unsafe.Pointer(link.header))
		return resultArg(ResultOK)
	}
	*out = 0
	return resultArg(ResultNoInterface)
}

func hostAddRef(this uintptr) uintptr {
	st := lookupHostState(this)
	if st == nil {
		return 0
	}
	return uintptr(st.refs.Add(1))
}

func hostRelease(this uintptr) uintptr {
	return releaseHostObj(this)
}

// ImplOf recovers the Go implementation behind a this-pointer, for use by
// interface-specific callback slots.
func ImplOf(this uintptr) any {
	st := lookupHostState(this)
	if st == nil {
		return nil
	}
	return st.impl
}

func resultArg(r Result) uintptr { return uintptr(uint32(r)) }

// LiveHostObjects reports how many host-side objects are currently
// registered, i.e. not yet released to zero. Diagnostics and tests use it
// to verify reference hygiene.
func LiveHostObjects() int {
	hostMu.RLock()
	defer hostMu.RUnlock()
	return len(hostObjs)
}
