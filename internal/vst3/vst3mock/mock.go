// Package vst3mock provides an in-process VST3 plugin built on the same
// vtable machinery the host uses for its callback objects. Tests drive the
// real lifecycle controller and audio path against it: every call crosses
// an actual vtable dispatch, reference counts are live, and the plugin can
// call back into host objects the way a binary plugin would.
package vst3mock

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tphakala/plughost/internal/vst3"
)

// Options configures the mock's behavior.
type Options struct {
	ClassName string
	// Gain is applied by the processor: out = in * Gain.
	Gain float32
	// SeparateController exposes the controller as a distinct factory
	// class; otherwise the component answers the edit-controller query.
	SeparateController bool
	// WithView makes createView return an editor view.
	WithView bool
	// ConstrainedRect is what the view rewrites size constraints to and
	// reports as its size.
	ConstrainedRect vst3.ViewRect
}

// Counters observes the plugin side of the protocol.
type Counters struct {
	ComponentInitialize atomic.Int32
	ComponentTerminate  atomic.Int32
	ControllerInit      atomic.Int32
	ControllerTerminate atomic.Int32
	SetActiveOn         atomic.Int32
	SetActiveOff        atomic.Int32
	SetProcessingOn     atomic.Int32
	SetProcessingOff    atomic.Int32
	ProcessCalls        atomic.Int32
	ActivateBusCalls    atomic.Int32
	ViewAttached        atomic.Int32
	ViewRemoved         atomic.Int32
	ParamChangeCounts   atomic.Int32 // process calls that queried the host's changes object
}

// Plugin is one mock plugin module: a factory exporting a single audio
// effect class.
type Plugin struct {
	opts Options

	ClassID           vst3.TUID
	ControllerClassID vst3.TUID

	Counters Counters

	factory    *vst3.HostObject
	component  *vst3.HostObject
	processor  *vst3.HostObject
	controller *vst3.HostObject
	view       *vst3.HostObject

	// What the host handed over, for calling back through.
	hostContext atomic.Uintptr
	handlerPtr  atomic.Uintptr
	framePtr    atomic.Uintptr
	attachedTo  atomic.Uintptr
	lastSetup   vst3.ProcessSetup
	lastOnSize  vst3.ViewRect
	mu          sync.Mutex
}

var (
	vtblOnce       sync.Once
	factoryVtbl    unsafe.Pointer
	componentVtbl  unsafe.Pointer
	processorVtbl  unsafe.Pointer
	controllerVtbl unsafe.Pointer
	viewVtbl       unsafe.Pointer
)

type (
	mockFactory    struct{ p *Plugin }
	mockComponent  struct{ p *Plugin }
	mockProcessor  struct{ p *Plugin }
	mockController struct{ p *Plugin }
	mockView       struct{ p *Plugin }
)

// New builds the mock plugin object graph.
func New(opts Options) *Plugin {
	if opts.ClassName == "" {
		opts.ClassName = "MockEffect"
	}
	if opts.Gain == 0 {
		opts.Gain = 1
	}
	if opts.ConstrainedRect == (vst3.ViewRect{}) {
		opts.ConstrainedRect = vst3.ViewRect{Right: 1024, Bottom: 768}
	}
	initVtbls()

	p := &Plugin{
		opts:              opts,
		ClassID:           vst3.NewTUID(0x4D6F636B, 0x506C7567, 0x436C6173, 0x73313233),
		ControllerClassID: vst3.NewTUID(0x4D6F636B, 0x43747253, 0x436C6173, 0x73343536),
	}
	p.factory = vst3.NewHostObject(factoryVtbl, &mockFactory{p}, vst3.IIDIPluginFactory)
	p.component = vst3.NewHostObject(componentVtbl, &mockComponent{p},
		vst3.IIDIComponent, vst3.IIDIPluginBase)
	p.processor = vst3.NewHostObject(processorVtbl, &mockProcessor{p}, vst3.IIDIAudioProcessor)
	p.controller = vst3.NewHostObject(controllerVtbl, &mockController{p},
		vst3.IIDIEditController, vst3.IIDIPluginBase)

	p.component.Link(vst3.IIDIAudioProcessor, p.processor)
	if !opts.SeparateController {
		p.component.Link(vst3.IIDIEditController, p.controller)
	}
	return p
}

// Factory returns a new owning reference to the plugin's factory, the way
// GetPluginFactory would.
func (p *Plugin) Factory() vst3.IPluginFactory {
	p.factory.Unknown().AddRef()
	return vst3.IPluginFactory{FUnknown: p.factory.Unknown()}
}

// ComponentRefs exposes the component's live reference count.
func (p *Plugin) ComponentRefs() int32 { return p.component.Refs() }

// FactoryRefs exposes the factory's live reference count.
func (p *Plugin) FactoryRefs() int32 { return p.factory.Refs() }

// LastProcessSetup returns the most recent setup the host handed over.
func (p *Plugin) LastProcessSetup() vst3.ProcessSetup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSetup
}

// LastOnSize returns the rect most recently delivered to the view.
func (p *Plugin) LastOnSize() vst3.ViewRect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOnSize
}

// HostContext returns the host-application pointer given to initialize.
func (p *Plugin) HostContext() uintptr { return p.hostContext.Load() }

// QueryHostName calls back through the component handler the host
// installed, cross-queries it for the host application and reads the
// host's name, exactly like a plugin probing its environment.
func (p *Plugin) QueryHostName() (string, bool) {
	handler := p.handlerPtr.Load()
	if handler == 0 {
		return "", false
	}
	iid := vst3.IIDIHostApplication
	var out uintptr
	res := callSlot(handler, 0,
		uintptr(unsafe.Pointer(&iid)),
		uintptr(unsafe.Pointer(&out)))
	if vst3.Result(int32(res)) != vst3.ResultOK || out == 0 {
		return "", false
	}
	var name vst3.String128
	callSlot(out, 3, uintptr(unsafe.Pointer(&name)))
	callSlot(out, 2) // release the cross-queried reference
	return vst3.DecodeString128(&name), true
}

// RequestResize drives the host's plug-frame object with a resize_view
// call, as a plugin editor would when the user scales its UI.
func (p *Plugin) RequestResize(rect vst3.ViewRect) vst3.Result {
	frame := p.framePtr.Load()
	p.mu.Lock()
	view := p.view
	p.mu.Unlock()
	if frame == 0 || view == nil {
		return vst3.ResultNotInitialized
	}
	res := callSlot(frame, 3,
		uintptr(view.Ptr()),
		uintptr(unsafe.Pointer(&rect)))
	return vst3.Result(int32(res))
}

// Close releases the mock's own references. Call after the host has
// finished its teardown.
func (p *Plugin) Close() {
	for _, obj := range []*vst3.HostObject{p.controller, p.processor, p.component, p.factory} {
		if obj != nil {
			obj.Release()
		}
	}
	p.factory, p.component, p.processor, p.controller = nil, nil, nil, nil
}

// callSlot dispatches vtable slot i of an arbitrary interface pointer.
func callSlot(obj uintptr, slot int, args ...uintptr) uintptr {
	vt := *(*unsafe.Pointer)(unsafe.Pointer(obj))
	fn := *(*uintptr)(unsafe.Add(vt, uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	full := make([]uintptr, 0, len(args)+1)
	full = append(full, obj)
	full = append(full, args...)
	r, _, _ := purego.SyscallN(fn, full...)
	return r
}

func ok() uintptr                  { return uintptr(uint32(vst3.ResultOK)) }
func status(r vst3.Result) uintptr { return uintptr(uint32(r)) }

func initVtbls() {
	vtblOnce.Do(func() {
		factoryVtbl = vst3.NewVtable(
			purego.NewCallback(factoryGetInfo),
			purego.NewCallback(factoryCountClasses),
			purego.NewCallback(factoryGetClassInfo),
			purego.NewCallback(factoryCreateInstance),
		)
		componentVtbl = vst3.NewVtable(
			purego.NewCallback(componentInitialize),
			purego.NewCallback(componentTerminate),
			purego.NewCallback(componentGetControllerClassID),
			purego.NewCallback(componentSetIOMode),
			purego.NewCallback(componentGetBusCount),
			purego.NewCallback(componentGetBusInfo),
			purego.NewCallback(stubNotImplemented1), // getRoutingInfo
			purego.NewCallback(componentActivateBus),
			purego.NewCallback(componentSetActive),
			purego.NewCallback(stubNotImplemented1), // setState
			purego.NewCallback(stubNotImplemented1), // getState
		)
		processorVtbl = vst3.NewVtable(
			purego.NewCallback(processorSetBusArrangements),
			purego.NewCallback(processorGetBusArrangement),
			purego.NewCallback(processorCanProcessSampleSize),
			purego.NewCallback(stubZero0), // getLatencySamples
			purego.NewCallback(processorSetupProcessing),
			purego.NewCallback(processorSetProcessing),
			purego.NewCallback(processorProcess),
			purego.NewCallback(stubZero0), // getTailSamples
		)
		controllerVtbl = vst3.NewVtable(
			purego.NewCallback(controllerInitialize),
			purego.NewCallback(controllerTerminate),
			purego.NewCallback(stubNotImplemented1), // setComponentState
			purego.NewCallback(stubNotImplemented1), // setState
			purego.NewCallback(stubNotImplemented1), // getState
			purego.NewCallback(controllerGetParameterCount),
			purego.NewCallback(stubNotImplemented2), // getParameterInfo
			purego.NewCallback(stubNotImplemented3), // getParamStringByValue
			purego.NewCallback(stubNotImplemented3), // getParamValueByString
			purego.NewCallback(stubZero1),           // normalizedParamToPlain
			purego.NewCallback(stubZero1),           // plainParamToNormalized
			purego.NewCallback(stubZero1),           // getParamNormalized
			purego.NewCallback(stubNotImplemented1), // setParamNormalized
			purego.NewCallback(controllerSetComponentHandler),
			purego.NewCallback(controllerCreateView),
		)
		viewVtbl = vst3.NewVtable(
			purego.NewCallback(viewIsPlatformTypeSupported),
			purego.NewCallback(viewAttached),
			purego.NewCallback(viewRemoved),
			purego.NewCallback(stubNotImplemented1), // onWheel
			purego.NewCallback(stubNotImplemented3), // onKeyDown
			purego.NewCallback(stubNotImplemented3), // onKeyUp
			purego.NewCallback(viewGetSize),
			purego.NewCallback(viewOnSize),
			purego.NewCallback(stubNotImplemented1), // onFocus
			purego.NewCallback(viewSetFrame),
			purego.NewCallback(stubOK0),             // canResize
			purego.NewCallback(viewCheckSizeConstraint),
		)
	})
}

// Generic stubs for slots the host never exercises; they exist to keep the
// vtable layout exact.
func stubOK0(this uintptr) uintptr                 { return ok() }
func stubZero0(this uintptr) uintptr               { return 0 }
func stubZero1(this, a uintptr) uintptr            { return 0 }
func stubNotImplemented1(this, a uintptr) uintptr  { return status(vst3.ResultNotImplemented) }
func stubNotImplemented2(this, a, b uintptr) uintptr {
	return status(vst3.ResultNotImplemented)
}
func stubNotImplemented3(this, a, b, c uintptr) uintptr {
	return status(vst3.ResultNotImplemented)
}

func factoryOf(this uintptr) *Plugin {
	impl, _ := vst3.ImplOf(this).(*mockFactory)
	if impl == nil {
		return nil
	}
	return impl.p
}

func factoryGetInfo(this, info uintptr) uintptr {
	pf := (*vst3.PFactoryInfo)(unsafe.Pointer(info))
	*pf = vst3.PFactoryInfo{}
	copy(pf.Vendor[:len(pf.Vendor)-1], "plughost test vendor")
	copy(pf.URL[:len(pf.URL)-1], "https://github.com/tphakala/plughost")
	return ok()
}

func factoryCountClasses(this uintptr) uintptr {
	p := factoryOf(this)
	if p != nil && p.opts.SeparateController {
		return 2
	}
	return 1
}

func factoryGetClassInfo(this uintptr, index int32, info uintptr) uintptr {
	p := factoryOf(this)
	if p == nil || info == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	ci := (*vst3.PClassInfo)(unsafe.Pointer(info))
	*ci = vst3.PClassInfo{Cardinality: 0x7FFFFFFF}
	switch index {
	case 0:
		ci.CID = p.ClassID
		copy(ci.Category[:len(ci.Category)-1], vst3.CategoryAudioEffect)
		copy(ci.Name[:len(ci.Name)-1], p.opts.ClassName)
	case 1:
		if !p.opts.SeparateController {
			return status(vst3.ResultInvalidArgument)
		}
		ci.CID = p.ControllerClassID
		copy(ci.Category[:len(ci.Category)-1], "Component Controller Class")
		copy(ci.Name[:len(ci.Name)-1], p.opts.ClassName+" Controller")
	default:
		return status(vst3.ResultInvalidArgument)
	}
	return ok()
}

func factoryCreateInstance(this, cid, iid, obj uintptr) uintptr {
	p := factoryOf(this)
	if p == nil || obj == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	out := (*uintptr)(unsafe.Pointer(obj))
	reqClass := *(*vst3.TUID)(unsafe.Pointer(cid))
	reqIface := *(*vst3.TUID)(unsafe.Pointer(iid))

	switch reqClass {
	case p.ClassID:
		if reqIface == vst3.IIDIComponent || reqIface == vst3.IIDFUnknown {
			p.component.Unknown().AddRef()
			*out = uintptr(p.component.Ptr())
			return ok()
		}
	case p.ControllerClassID:
		if p.opts.SeparateController && reqIface == vst3.IIDIEditController {
			p.controller.Unknown().AddRef()
			*out = uintptr(p.controller.Ptr())
			return ok()
		}
	}
	*out = 0
	return status(vst3.ResultNoInterface)
}

func componentOf(this uintptr) *Plugin {
	impl, _ := vst3.ImplOf(this).(*mockComponent)
	if impl == nil {
		return nil
	}
	return impl.p
}

func componentInitialize(this, context uintptr) uintptr {
	p := componentOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.hostContext.Store(context)
	p.Counters.ComponentInitialize.Add(1)
	return ok()
}

func componentTerminate(this uintptr) uintptr {
	p := componentOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.Counters.ComponentTerminate.Add(1)
	return ok()
}

func componentGetControllerClassID(this, cid uintptr) uintptr {
	p := componentOf(this)
	if p == nil || cid == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	if !p.opts.SeparateController {
		return status(vst3.ResultFalse)
	}
	*(*vst3.TUID)(unsafe.Pointer(cid)) = p.ControllerClassID
	return ok()
}

func componentSetIOMode(this uintptr, mode int32) uintptr {
	return ok()
}

func componentGetBusCount(this uintptr, mediaType, direction int32) uintptr {
	if mediaType != vst3.MediaTypeAudio {
		return 0
	}
	return 1
}

func componentGetBusInfo(this uintptr, mediaType, direction, index int32, info uintptr) uintptr {
	if index != 0 || info == 0 || mediaType != vst3.MediaTypeAudio {
		return status(vst3.ResultInvalidArgument)
	}
	bi := (*vst3.BusInfo)(unsafe.Pointer(info))
	*bi = vst3.BusInfo{
		MediaType:    mediaType,
		Direction:    direction,
		ChannelCount: 2,
		BusType:      vst3.BusTypeMain,
	}
	vst3.EncodeString128(&bi.Name, "Main")
	return ok()
}

func componentActivateBus(this uintptr, mediaType, direction, index int32, state uintptr) uintptr {
	p := componentOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	if index != 0 {
		return status(vst3.ResultInvalidArgument)
	}
	p.Counters.ActivateBusCalls.Add(1)
	return ok()
}

func componentSetActive(this uintptr, state uintptr) uintptr {
	p := componentOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	if state != 0 {
		p.Counters.SetActiveOn.Add(1)
	} else {
		p.Counters.SetActiveOff.Add(1)
	}
	return ok()
}

func processorOf(this uintptr) *Plugin {
	impl, _ := vst3.ImplOf(this).(*mockProcessor)
	if impl == nil {
		return nil
	}
	return impl.p
}

func processorSetBusArrangements(this, in uintptr, numIn int32, out uintptr, numOut int32) uintptr {
	return ok()
}

func processorGetBusArrangement(this uintptr, direction, index int32, arrangement uintptr) uintptr {
	if arrangement == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	*(*uint64)(unsafe.Pointer(arrangement)) = 0x3 // stereo
	return ok()
}

func processorCanProcessSampleSize(this uintptr, symbolicSize int32) uintptr {
	if symbolicSize == vst3.SampleSize32 {
		return ok()
	}
	return status(vst3.ResultFalse)
}

func processorSetupProcessing(this, setup uintptr) uintptr {
	p := processorOf(this)
	if p == nil || setup == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	p.mu.Lock()
	p.lastSetup = *(*vst3.ProcessSetup)(unsafe.Pointer(setup))
	p.mu.Unlock()
	return ok()
}

func processorSetProcessing(this uintptr, state uintptr) uintptr {
	p := processorOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	if state != 0 {
		p.Counters.SetProcessingOn.Add(1)
	} else {
		p.Counters.SetProcessingOff.Add(1)
	}
	return ok()
}

func processorProcess(this, data uintptr) uintptr {
	p := processorOf(this)
	if p == nil || data == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	p.Counters.ProcessCalls.Add(1)

	pd := (*vst3.ProcessData)(unsafe.Pointer(data))
	if pd.Inputs == nil || pd.Outputs == nil || pd.NumSamples <= 0 {
		return ok()
	}

	// Touch the host's parameter-changes object the way real plugins do.
	if pd.InputParameterChanges != nil {
		_ = callSlot(uintptr(pd.InputParameterChanges), 3)
		p.Counters.ParamChangeCounts.Add(1)
	}

	frames := int(pd.NumSamples)
	channels := int(pd.Inputs.NumChannels)
	if c := int(pd.Outputs.NumChannels); c < channels {
		channels = c
	}
	inPtrs := unsafe.Slice((**float32)(pd.Inputs.ChannelBuffers), channels)
	outPtrs := unsafe.Slice((**float32)(pd.Outputs.ChannelBuffers), channels)
	gain := p.opts.Gain
	for c := 0; c < channels; c++ {
		in := unsafe.Slice(inPtrs[c], frames)
		out := unsafe.Slice(outPtrs[c], frames)
		for i := 0; i < frames; i++ {
			out[i] = in[i] * gain
		}
	}
	return ok()
}

func controllerOf(this uintptr) *Plugin {
	impl, _ := vst3.ImplOf(this).(*mockController)
	if impl == nil {
		return nil
	}
	return impl.p
}

func controllerInitialize(this, context uintptr) uintptr {
	p := controllerOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.Counters.ControllerInit.Add(1)
	return ok()
}

func controllerTerminate(this uintptr) uintptr {
	p := controllerOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.Counters.ControllerTerminate.Add(1)
	return ok()
}

func controllerGetParameterCount(this uintptr) uintptr {
	return 2
}

func controllerSetComponentHandler(this, handler uintptr) uintptr {
	p := controllerOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.handlerPtr.Store(handler)
	return ok()
}

func controllerCreateView(this, name uintptr) uintptr {
	p := controllerOf(this)
	if p == nil || !p.opts.WithView {
		return 0
	}
	// A fresh view per call; the single reference transfers to the caller
	// and the mock only remembers the latest for RequestResize.
	view := vst3.NewHostObject(viewVtbl, &mockView{p}, vst3.IIDIPlugView)
	p.mu.Lock()
	p.view = view
	p.mu.Unlock()
	return uintptr(view.Ptr())
}

func viewOf(this uintptr) *Plugin {
	impl, _ := vst3.ImplOf(this).(*mockView)
	if impl == nil {
		return nil
	}
	return impl.p
}

func viewIsPlatformTypeSupported(this, platformType uintptr) uintptr {
	return ok()
}

func viewAttached(this, handle, platformType uintptr) uintptr {
	p := viewOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.attachedTo.Store(handle)
	p.Counters.ViewAttached.Add(1)
	return ok()
}

func viewRemoved(this uintptr) uintptr {
	p := viewOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.attachedTo.Store(0)
	p.Counters.ViewRemoved.Add(1)
	return ok()
}

func viewGetSize(this, rect uintptr) uintptr {
	p := viewOf(this)
	if p == nil || rect == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	*(*vst3.ViewRect)(unsafe.Pointer(rect)) = p.opts.ConstrainedRect
	return ok()
}

func viewOnSize(this, rect uintptr) uintptr {
	p := viewOf(this)
	if p == nil || rect == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	p.mu.Lock()
	p.lastOnSize = *(*vst3.ViewRect)(unsafe.Pointer(rect))
	p.mu.Unlock()
	return ok()
}

func viewSetFrame(this, frame uintptr) uintptr {
	p := viewOf(this)
	if p == nil {
		return status(vst3.ResultInternalError)
	}
	p.framePtr.Store(frame)
	return ok()
}

func viewCheckSizeConstraint(this, rect uintptr) uintptr {
	p := viewOf(this)
	if p == nil || rect == 0 {
		return status(vst3.ResultInvalidArgument)
	}
	*(*vst3.ViewRect)(unsafe.Pointer(rect)) = p.opts.ConstrainedRect
	return ok()
}
