// Package plugview embeds a plugin's editor view into a host-owned native
// window. The window itself lives outside the core; this glue only needs
// its handle and its resize events.
package plugview

import (
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/tphakala/plughost/internal/errors"
	"github.com/tphakala/plughost/internal/logging"
	"github.com/tphakala/plughost/internal/plugin"
	"github.com/tphakala/plughost/internal/vst3"
)

// WindowHost is the embedder's side of the glue: a native handle, its
// platform type string and a way to request a new inner size.
type WindowHost interface {
	Handle() unsafe.Pointer
	PlatformType() string
	ResizeTo(width, height int32)
}

// DefaultPlatformType returns the platform type string for this OS.
func DefaultPlatformType() string {
	switch runtime.GOOS {
	case "windows":
		return vst3.PlatformTypeHWND
	case "darwin":
		return vst3.PlatformTypeNSView
	default:
		return vst3.PlatformTypeX11
	}
}

// Embedding is one attached editor view.
type Embedding struct {
	inst   *plugin.Instance
	view   vst3.IPlugView
	host   WindowHost
	logger *slog.Logger
}

// Embed attaches the instance's editor view to the host window. Only valid
// after the controller is initialized, which the lifecycle controller
// guarantees for any instance it returns.
func Embed(inst *plugin.Instance, host WindowHost) (*Embedding, error) {
	logger := logging.ForService("plugview")
	if logger == nil {
		logger = slog.Default()
	}
	view := inst.View()
	if view.IsNil() {
		return nil, errors.Newf("plugin has no editor view").
			Component("plugview").
			Category(errors.CategoryNotFound).
			Context("plugin", inst.ClassName).
			Build()
	}

	platformType := host.PlatformType()
	if res := view.IsPlatformTypeSupported(platformType); !res.OK() {
		logger.Warn("view does not advertise platform support, attaching anyway",
			"plugin", inst.ClassName,
			"platform_type", platformType,
			"status", res)
	}

	if err := view.Attached(host.Handle(), platformType); err != nil {
		return nil, errors.New(err).
			Component("plugview").
			Category(errors.CategoryProtocol).
			Context("plugin", inst.ClassName).
			Context("operation", "view_attached").
			Build()
	}
	inst.MarkViewAttached(true)

	emb := &Embedding{inst: inst, view: view, host: host, logger: logger}

	// Size the window to the view's preference up front.
	if rect, err := view.Size(); err == nil && rect.Width() > 0 && rect.Height() > 0 {
		host.ResizeTo(rect.Width(), rect.Height())
	}
	return emb, nil
}

// OnWindowResized forwards a window size change to the view. The view may
// rewrite the rect to the nearest size it accepts, in which case the window
// is asked to match the returned extents.
func (e *Embedding) OnWindowResized(width, height int32) {
	rect := vst3.ViewRect{Right: width, Bottom: height}
	if res := e.view.CheckSizeConstraint(&rect); res.OK() {
		if rect.Width() != width || rect.Height() != height {
			e.host.ResizeTo(rect.Width(), rect.Height())
		}
	}
	if err := e.view.OnSize(&rect); err != nil {
		e.logger.Debug("view rejected size", "plugin", e.inst.ClassName, "error", err)
	}
}

// OnResizeRequest serves the plug-frame path: the plugin asked for a new
// window size.
func (e *Embedding) OnResizeRequest(req vst3.ResizeRequest) {
	e.host.ResizeTo(req.Rect.Width(), req.Rect.Height())
	rect := req.Rect
	_ = e.view.OnSize(&rect)
}

// Close detaches the view from the window. Must run before the instance is
// dropped while the window is still alive.
func (e *Embedding) Close() {
	if err := e.view.Removed(); err != nil {
		e.logger.Debug("view removed with status", "plugin", e.inst.ClassName, "error", err)
	}
	e.inst.MarkViewAttached(false)
}
