// Package plugin owns the lifecycle of loaded VST3 plugin instances: the
// order-sensitive construction sequence, the processing state machine, the
// mirrored teardown, and the registry the audio engine iterates.
package plugin

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tphakala/plughost/internal/errors"
	"github.com/tphakala/plughost/internal/logging"
	"github.com/tphakala/plughost/internal/vst3"
)

// State tracks how far along the lifecycle an instance is.
type State int32

const (
	StateUninitialized State = iota
	StateLoaded
	StateConfigured
	StateActive
	StateProcessing
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateConfigured:
		return "configured"
	case StateActive:
		return "active"
	case StateProcessing:
		return "processing"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// Config carries the processing defaults handed to the plugin during
// construction. The instance applies them once, before activation; no later
// SetupProcessing call is made.
type Config struct {
	SampleRate   float64
	MaxBlockSize int32
	// OnResize receives the plugin's window-resize requests. Optional.
	OnResize func(vst3.ResizeRequest)
}

func (c *Config) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 48000
	}
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = 1920
	}
}

// Instance is one loaded plugin: the module handle, the interface pointers
// acquired during construction and the host callback objects pinned for its
// lifetime. Fields are released in strict reverse of construction order.
type Instance struct {
	ID        string
	Path      string
	ClassName string

	module     *vst3.Module
	factory    vst3.IPluginFactory
	component  vst3.IComponent
	processor  vst3.IAudioProcessor
	controller vst3.IEditController
	view       vst3.IPlugView
	compConn   vst3.IConnectionPoint
	ctrlConn   vst3.IConnectionPoint

	hostApp  *vst3.HostObject
	handler  *vst3.HostObject
	handler2 *vst3.HostObject
	frame    *vst3.HostObject

	state        atomic.Int32
	viewAttached atomic.Bool
	logger       *slog.Logger
}

// Load builds a ready-to-process instance from the first audio-effect class
// in the module at path. Any plugin failure before activation aborts with
// the partial construction released in reverse order.
func Load(path string, cfg Config) (*Instance, error) {
	// Step 1: module and factory.
	module, err := vst3.OpenModule(path)
	if err != nil {
		return nil, err
	}
	factory, err := module.Factory()
	if err != nil {
		_ = module.Close()
		return nil, err
	}
	return newInstance(module, path, factory, cfg)
}

// LoadFromFactory builds an instance from an already-obtained factory, for
// plugins linked into the host process rather than loaded from disk. The
// instance takes ownership of the factory reference.
func LoadFromFactory(factory vst3.IPluginFactory, cfg Config) (*Instance, error) {
	return newInstance(nil, "", factory, cfg)
}

func newInstance(module *vst3.Module, path string, factory vst3.IPluginFactory, cfg Config) (*Instance, error) {
	cfg.applyDefaults()

	logger := logging.ForService("plugin")
	if logger == nil {
		logger = slog.Default()
	}
	inst := &Instance{
		ID:      uuid.New().String(),
		Path:    path,
		module:  module,
		factory: factory,
		logger:  logger,
	}

	if info, err := factory.FactoryInfo(); err == nil {
		logger.Debug("plugin factory loaded",
			"path", path,
			"vendor", factoryVendor(&info),
			"classes", factory.CountClasses())
	}

	// Step 2: host callback objects, pinned for the instance's lifetime.
	inst.hostApp = vst3.NewHostApplication()
	inst.handler, inst.handler2 = vst3.NewComponentHandler(inst.hostApp)
	inst.frame = vst3.NewPlugFrame(cfg.OnResize)
	inst.state.Store(int32(StateLoaded))

	if err := inst.construct(cfg); err != nil {
		inst.Drop()
		return nil, err
	}
	if module != nil {
		module.RetainInstance()
	}
	return inst, nil
}

// construct runs lifecycle steps 3..15 against the factory.
func (p *Instance) construct(cfg Config) error {
	// Step 3: find the processing component class.
	var class vst3.ClassInfo
	found := false
	for i := int32(0); i < p.factory.CountClasses(); i++ {
		ci, err := p.factory.ClassInfo(i)
		if err != nil {
			continue
		}
		p.logger.Debug("factory class", "index", i, "name", ci.Name, "category", ci.Category)
		if ci.Category == vst3.CategoryAudioEffect {
			class = ci
			found = true
			break
		}
	}
	if !found {
		return errors.Newf("module exports no audio effect class").
			Component("plugin").
			Category(errors.CategoryPluginLoad).
			Context("path", p.Path).
			Build()
	}
	p.ClassName = class.Name

	// Step 4: instantiate the component.
	compUnk, err := p.factory.CreateInstance(class.CID, vst3.IIDIComponent)
	if err != nil {
		return p.protocolErr("create_component", err)
	}
	p.component = vst3.ComponentFromUnknown(compUnk)

	// Step 5.
	p.component.SetIOMode(vst3.IoModeAdvanced)

	// Step 6: the controller comes from exactly one of two paths — a
	// separate class the factory instantiates, or a query on the component.
	if cid, err := p.component.ControllerClassID(); err == nil {
		ctrlUnk, err := p.factory.CreateInstance(cid, vst3.IIDIEditController)
		if err != nil {
			return p.protocolErr("create_controller", err)
		}
		p.controller = vst3.ControllerFromUnknown(ctrlUnk)
	} else {
		ctrlUnk, err := p.component.QueryInterface(vst3.IIDIEditController)
		if err != nil {
			return p.protocolErr("query_controller", err)
		}
		p.controller = vst3.ControllerFromUnknown(ctrlUnk)
	}

	// Step 7.
	if err := p.component.Initialize(p.hostApp.Ptr()); err != nil {
		return p.protocolErr("component_initialize", err)
	}

	// Step 8: cross-connect the peers before the controller initializes.
	if compConn, err := p.component.QueryInterface(vst3.IIDIConnectionPoint); err == nil {
		if ctrlConn, err := p.controller.QueryInterface(vst3.IIDIConnectionPoint); err == nil {
			p.compConn = vst3.ConnectionPointFromUnknown(compConn)
			p.ctrlConn = vst3.ConnectionPointFromUnknown(ctrlConn)
			_ = p.compConn.Connect(p.ctrlConn)
			_ = p.ctrlConn.Connect(p.compConn)
		} else {
			compConn.Release()
		}
	}

	// Step 9.
	procUnk, err := p.component.QueryInterface(vst3.IIDIAudioProcessor)
	if err != nil {
		return p.protocolErr("query_processor", err)
	}
	p.processor = vst3.ProcessorFromUnknown(procUnk)

	// Step 10: processing setup from cfg; it stays in force when
	// processing is enabled later.
	setup := vst3.ProcessSetup{
		ProcessMode:        vst3.ProcessModeRealtime,
		SymbolicSampleSize: vst3.SampleSize32,
		MaxSamplesPerBlock: cfg.MaxBlockSize,
		SampleRate:         cfg.SampleRate,
	}
	if err := p.processor.SetupProcessing(&setup); err != nil {
		return p.protocolErr("setup_processing", err)
	}

	// Step 11: first audio bus of each direction.
	p.activateBuses()

	// Step 12.
	if err := p.component.SetActive(true); err != nil {
		return p.protocolErr("set_active", err)
	}
	p.state.Store(int32(StateConfigured))

	// Failures past activation are logged; teardown still walks every
	// acquired interface.
	// Step 13.
	if err := p.controller.Initialize(p.hostApp.Ptr()); err != nil {
		p.logger.Warn("controller initialize failed", "plugin", p.ClassName, "error", err)
	}
	// Step 14.
	if err := p.controller.SetComponentHandler(p.handler.Ptr()); err != nil {
		p.logger.Warn("set_component_handler failed", "plugin", p.ClassName, "error", err)
	}
	p.logger.Debug("controller ready",
		"plugin", p.ClassName,
		"parameters", p.controller.ParameterCount())

	// Step 15: the view is optional; effects without editors return null.
	p.view = p.controller.CreateView(vst3.ViewTypeEditor)
	if !p.view.IsNil() {
		_ = p.view.SetFrame(p.frame.Ptr())
	}

	p.state.Store(int32(StateActive))
	return nil
}

// activateBuses switches on the first bus of each direction, logging the
// topology on the way. A missing bus is logged and skipped; plugins with
// unusual topologies still load.
func (p *Instance) activateBuses() {
	for _, dir := range []int32{vst3.BusDirectionInput, vst3.BusDirectionOutput} {
		count := p.component.BusCount(vst3.MediaTypeAudio, dir)
		for i := int32(0); i < count; i++ {
			if info, err := p.component.BusInfo(vst3.MediaTypeAudio, dir, i); err == nil {
				p.logger.Debug("audio bus",
					"plugin", p.ClassName,
					"direction", dir,
					"index", i,
					"name", vst3.DecodeString128(&info.Name),
					"channels", info.ChannelCount)
			}
		}
		if count == 0 {
			p.logger.Warn("plugin has no audio bus", "plugin", p.ClassName, "direction", dir)
			continue
		}
		if res := p.component.ActivateBus(vst3.MediaTypeAudio, dir, 0, true); !res.OK() {
			p.logger.Warn("activate_bus failed",
				"plugin", p.ClassName,
				"direction", dir,
				"status", res)
		}
	}
}

// Processor returns the processing interface for the audio engine.
func (p *Instance) Processor() vst3.IAudioProcessor { return p.processor }

// View returns the editor view; IsNil when the plugin has no editor.
func (p *Instance) View() vst3.IPlugView { return p.view }

// State returns the current lifecycle state.
func (p *Instance) State() State { return State(p.state.Load()) }

// SetProcessing toggles the plugin's processing state. Transitions between
// Active and Processing only.
func (p *Instance) SetProcessing(enabled bool) error {
	cur := State(p.state.Load())
	if enabled && cur != StateActive {
		return errors.Newf("cannot enable processing from state %s", cur).
			Component("plugin").
			Category(errors.CategoryState).
			Context("plugin", p.ClassName).
			Build()
	}
	if err := p.processor.SetProcessing(enabled); err != nil {
		return p.protocolErr("set_processing", err)
	}
	if enabled {
		p.state.Store(int32(StateProcessing))
	} else {
		p.state.Store(int32(StateActive))
	}
	return nil
}

// MarkViewAttached records that the editor view is embedded in a window.
func (p *Instance) MarkViewAttached(attached bool) {
	p.viewAttached.Store(attached)
}

// Drop tears the instance down in strict reverse of construction order.
// Safe to call on a partially constructed instance and idempotent through
// the nil checks on each interface.
func (p *Instance) Drop() {
	if State(p.state.Load()) == StateProcessing {
		_ = p.processor.SetProcessing(false)
	}

	if !p.compConn.IsNil() && !p.ctrlConn.IsNil() {
		_ = p.compConn.Disconnect(p.ctrlConn)
		_ = p.ctrlConn.Disconnect(p.compConn)
	}
	if !p.ctrlConn.IsNil() {
		p.ctrlConn.Release()
		p.ctrlConn = vst3.IConnectionPoint{}
	}
	if !p.compConn.IsNil() {
		p.compConn.Release()
		p.compConn = vst3.IConnectionPoint{}
	}

	if !p.view.IsNil() {
		if p.viewAttached.Load() {
			_ = p.view.Removed()
			p.viewAttached.Store(false)
		}
		p.state.Store(int32(StateDetached))
		p.view.Release()
		p.view = vst3.IPlugView{}
	}

	if !p.controller.IsNil() {
		_ = p.controller.Terminate()
		p.controller.Release()
		p.controller = vst3.IEditController{}
	}

	if !p.processor.IsNil() {
		p.processor.Release()
		p.processor = vst3.IAudioProcessor{}
	}

	if !p.component.IsNil() {
		_ = p.component.SetActive(false)
		_ = p.component.Terminate()
		p.component.Release()
		p.component = vst3.IComponent{}
	}

	if !p.factory.IsNil() {
		p.factory.Release()
		p.factory = vst3.IPluginFactory{}
	}

	// Host objects outlive every plugin-held reference; drop the host's own.
	for _, obj := range []**vst3.HostObject{&p.frame, &p.handler2, &p.handler, &p.hostApp} {
		if *obj != nil {
			(*obj).Release()
			*obj = nil
		}
	}

	if p.module != nil {
		if State(p.state.Load()) != StateLoaded && State(p.state.Load()) != StateUninitialized {
			p.module.ReleaseInstance()
		}
		if err := p.module.Close(); err != nil {
			p.logger.Debug("module left open", "path", p.Path, "reason", err)
		}
		p.module = nil
	}
	p.state.Store(int32(StateUninitialized))
}

func (p *Instance) protocolErr(operation string, err error) error {
	return errors.New(err).
		Component("plugin").
		Category(errors.CategoryProtocol).
		Context("path", p.Path).
		Context("plugin", p.ClassName).
		Context("operation", operation).
		Build()
}

func factoryVendor(info *vst3.PFactoryInfo) string {
	return vst3.CFieldString(info.Vendor[:])
}
