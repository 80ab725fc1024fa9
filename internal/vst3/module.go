package vst3

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tphakala/plughost/internal/errors"
)

// Module is one loaded plugin library. All instances created from the same
// module share it; the library is unloaded only after every instance has
// been released and the module's exit entry point has run.
type Module struct {
	path       string
	handle     uintptr
	factorySym uintptr
	exit       func()

	mu        sync.Mutex
	closed    bool
	instances atomic.Int32
}

// OpenModule loads the shared library at path, runs its init entry point if
// present and verifies the factory export. The path may name the library
// itself or a .vst3 bundle directory, which is resolved to the platform
// binary inside it.
func OpenModule(path string) (*Module, error) {
	libPath, err := resolveBundlePath(path)
	if err != nil {
		return nil, err
	}
	handle, err := dlOpen(libPath)
	if err != nil {
		return nil, errors.New(err).
			Component("vst3").
			Category(errors.CategoryPluginLoad).
			Context("path", libPath).
			Context("operation", "open_library").
			Build()
	}
	m := &Module{path: libPath, handle: handle}

	// Init/exit entry points are optional; a missing symbol is not an
	// error, a present one returning false is.
	if entry, exitFn, ok := moduleEntryPoints(handle); ok {
		if !entry() {
			dlClose(handle)
			return nil, errors.Newf("module init entry point refused to initialize").
				Component("vst3").
				Category(errors.CategoryPluginLoad).
				Context("path", libPath).
				Build()
		}
		m.exit = exitFn
	}

	sym, err := dlSym(handle, "GetPluginFactory")
	if err != nil || sym == 0 {
		if m.exit != nil {
			m.exit()
		}
		dlClose(handle)
		return nil, errors.New(err).
			Component("vst3").
			Category(errors.CategoryPluginLoad).
			Context("path", libPath).
			Context("symbol", "GetPluginFactory").
			Context("operation", "lookup_factory").
			Build()
	}
	m.factorySym = sym
	return m, nil
}

// Path returns the resolved library path.
func (m *Module) Path() string { return m.path }

// Factory invokes GetPluginFactory. The returned factory's lifetime is tied
// to the module; release it before closing the module.
func (m *Module) Factory() (IPluginFactory, error) {
	r, _, _ := purego.SyscallN(m.factorySym)
	if r == 0 {
		return IPluginFactory{}, errors.Newf("GetPluginFactory returned null").
			Component("vst3").
			Category(errors.CategoryPluginLoad).
			Context("path", m.path).
			Build()
	}
	return IPluginFactory{FUnknown: Wrap(unsafe.Pointer(r))}, nil
}

// RetainInstance records a live plugin instance built from this module.
func (m *Module) RetainInstance() { m.instances.Add(1) }

// ReleaseInstance records the teardown of a plugin instance.
func (m *Module) ReleaseInstance() { m.instances.Add(-1) }

// Instances returns the number of live plugin instances from this module.
func (m *Module) Instances() int32 { return m.instances.Load() }

// Close runs the exit entry point and unloads the library, exactly once.
// Closing with live instances is refused: unloading the code they run on
// is undefined behavior inside the plugin's destructor.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	if n := m.instances.Load(); n > 0 {
		return errors.Newf("module still has live plugin instances").
			Component("vst3").
			Category(errors.CategoryState).
			Context("path", m.path).
			Context("instances", n).
			Build()
	}
	m.closed = true
	if m.exit != nil {
		m.exit()
	}
	dlClose(m.handle)
	m.handle = 0
	return nil
}
