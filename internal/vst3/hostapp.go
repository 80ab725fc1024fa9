package vst3

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// HostName is what plugins see when they ask the host application for its
// name, delivered as little-endian UTF-16.
const HostName = "plughost"

var (
	hostAppVtblOnce sync.Once
	hostAppVtbl     unsafe.Pointer
)

type hostApplicationImpl struct {
	name string
}

// NewHostApplication constructs the IHostApplication callback object.
func NewHostApplication() *HostObject {
	hostAppVtblOnce.Do(func() {
		hostAppVtbl = NewVtable(
			purego.NewCallback(hostAppGetName),
			purego.NewCallback(hostAppCreateInstance),
		)
	})
	return NewHostObject(hostAppVtbl, &hostApplicationImpl{name: HostName}, IIDIHostApplication)
}

func hostAppGetName(this, name uintptr) uintptr {
	impl, ok := ImplOf(this).(*hostApplicationImpl)
	if !ok || name == 0 {
		return resultArg(ResultInvalidArgument)
	}
	EncodeString128((*String128)(unsafe.Pointer(name)), impl.name)
	return resultArg(ResultOK)
}

// create_instance serves plugins allocating host-owned helper objects. The
// only class the host vends is the message object.
func hostAppCreateInstance(this, cid, iid, obj uintptr) uintptr {
	if obj == 0 {
		return resultArg(ResultInvalidArgument)
	}
	out := (*uintptr)(unsafe.Pointer(obj))
	reqClass := *(*TUID)(unsafe.Pointer(cid))
	reqIface := *(*TUID)(unsafe.Pointer(iid))
	println("DEBUG this=", this, "cid=", cid, "iid=", iid, "obj=", obj)
	if reqClass == IIDIMessage && reqIface == IIDIMessage {
		// Ownership of the single reference moves to the plugin.
		msg := NewHostMessage()
		println("DEBUG msg.Ptr()=", uintptr(msg.Ptr()), "out=", out)
		*out = uintptr(msg.Ptr())
		println("DEBUG after write *out=", *out)
		return resultArg(ResultOK)
	}
	*out = 0
	return resultArg(ResultNoInterface)
}

var (
	handlerVtblOnce sync.Once
	handlerVtbl     unsafe.Pointer
	handler2Vtbl    unsafe.Pointer
)

type componentHandlerImpl struct{}

type componentHandler2Impl struct{}

// NewComponentHandler constructs the IComponentHandler callback object,
// with its IComponentHandler2 extension and a cross-link to the host
// application so the common query_interface(host_application) pattern
// works. The returned extension object shares the handler's lifetime.
func NewComponentHandler(hostApp *HostObject) (handler, handler2 *HostObject) {
	handlerVtblOnce.Do(func() {
		handlerVtbl = NewVtable(
			purego.NewCallback(handlerBeginEdit),
			purego.NewCallback(handlerPerformEdit),
			purego.NewCallback(handlerEndEdit),
			purego.NewCallback(handlerRestartComponent),
		)
		handler2Vtbl = NewVtable(
			purego.NewCallback(handler2SetDirty),
			purego.NewCallback(handler2RequestOpenEditor),
			purego.NewCallback(handler2StartGroupEdit),
			purego.NewCallback(handler2FinishGroupEdit),
		)
	})
	handler = NewHostObject(handlerVtbl, &componentHandlerImpl{}, IIDIComponentHandler)
	handler2 = NewHostObject(handler2Vtbl, &componentHandler2Impl{}, IIDIComponentHandler2)
	handler.Link(IIDIComponentHandler2, handler2)
	handler2.Link(IIDIComponentHandler, handler)
	if hostApp != nil {
		handler.Link(IIDIHostApplication, hostApp)
		handler2.Link(IIDIHostApplication, hostApp)
	}
	return handler, handler2
}

// Parameter automation write-back is acknowledged but not recorded; the
// host has no automation lanes.
func handlerBeginEdit(this uintptr, id uint32) uintptr {
	return resultArg(ResultOK)
}

func handlerPerformEdit(this uintptr, id uint32, value float64) uintptr {
	return resultArg(ResultOK)
}

func handlerEndEdit(this uintptr, id uint32) uintptr {
	return resultArg(ResultOK)
}

func handlerRestartComponent(this uintptr, flags int32) uintptr {
	// Re-running the activation sequence on request is not supported; every
	// restart request is answered with not-implemented.
	return resultArg(ResultNotImplemented)
}

func handler2SetDirty(this uintptr, state uintptr) uintptr {
	return resultArg(ResultOK)
}

func handler2RequestOpenEditor(this, name uintptr) uintptr {
	return resultArg(ResultOK)
}

func handler2StartGroupEdit(this uintptr) uintptr {
	return resultArg(ResultOK)
}

func handler2FinishGroupEdit(this uintptr) uintptr {
	return resultArg(ResultOK)
}

var (
	frameVtblOnce sync.Once
	frameVtbl     unsafe.Pointer
)

// ResizeRequest is delivered when the plugin asks the host to resize the
// window embedding its view.
type ResizeRequest struct {
	View unsafe.Pointer
	Rect ViewRect
}

type plugFrameImpl struct {
	onResize func(ResizeRequest)
}

// NewPlugFrame constructs the IPlugFrame callback object. onResize runs on
// whatever thread the plugin calls from and must not block.
func NewPlugFrame(onResize func(ResizeRequest)) *HostObject {
	frameVtblOnce.Do(func() {
		frameVtbl = NewVtable(
			purego.NewCallback(frameResizeView),
		)
	})
	return NewHostObject(frameVtbl, &plugFrameImpl{onResize: onResize}, IIDIPlugFrame)
}

func frameResizeView(this, view, rect uintptr) uintptr {
	impl, ok := ImplOf(this).(*plugFrameImpl)
	if !ok {
		return resultArg(ResultInternalError)
	}
	if impl.onResize != nil && rect != 0 {
		impl.onResize(ResizeRequest{
			View: unsafe.Pointer(view),
			Rect: *(*ViewRect)(unsafe.Pointer(rect)),
		})
	}
	return resultArg(ResultOK)
}

var (
	paramChangesVtblOnce sync.Once
	paramChangesVtbl     unsafe.Pointer
)

type parameterChangesImpl struct{}

// NewParameterChanges constructs the empty input parameter-changes object
// referenced by every process call: zero parameters, null queues. Enough
// for effects the host does not automate.
func NewParameterChanges() *HostObject {
	paramChangesVtblOnce.Do(func() {
		paramChangesVtbl = NewVtable(
			purego.NewCallback(paramChangesCount),
			purego.NewCallback(paramChangesData),
			purego.NewCallback(paramChangesAdd),
		)
	})
	return NewHostObject(paramChangesVtbl, &parameterChangesImpl{}, IIDIParameterChanges)
}

func paramChangesCount(this uintptr) uintptr {
	return 0
}

func paramChangesData(this uintptr, index int32) uintptr {
	return 0
}

func paramChangesAdd(this, id, index uintptr) uintptr {
	return 0
}
