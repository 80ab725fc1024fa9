package plugview

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plughost/internal/plugin"
	"github.com/tphakala/plughost/internal/vst3"
	"github.com/tphakala/plughost/internal/vst3/vst3mock"
)

type fakeWindow struct {
	handle   uintptr
	resizes  []vst3.ViewRect
	platform string
}

func (w *fakeWindow) Handle() unsafe.Pointer { return unsafe.Pointer(w.handle) }
func (w *fakeWindow) PlatformType() string {
	if w.platform == "" {
		return DefaultPlatformType()
	}
	return w.platform
}
func (w *fakeWindow) ResizeTo(width, height int32) {
	w.resizes = append(w.resizes, vst3.ViewRect{Right: width, Bottom: height})
}

func loadWithView(t *testing.T, opts vst3mock.Options) (*vst3mock.Plugin, *plugin.Instance) {
	t.Helper()
	opts.WithView = true
	mock := vst3mock.New(opts)
	var frameHook func(vst3.ResizeRequest)
	inst, err := plugin.LoadFromFactory(mock.Factory(), plugin.Config{
		OnResize: func(req vst3.ResizeRequest) {
			if frameHook != nil {
				frameHook(req)
			}
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		inst.Drop()
		mock.Close()
	})
	return mock, inst
}

func TestEmbedAttachesAndSizes(t *testing.T) {
	mock, inst := loadWithView(t, vst3mock.Options{
		ConstrainedRect: vst3.ViewRect{Right: 640, Bottom: 400},
	})
	win := &fakeWindow{handle: 0xBEEF}

	emb, err := Embed(inst, win)
	require.NoError(t, err)

	assert.Equal(t, int32(1), mock.Counters.ViewAttached.Load())
	// Window was sized to the view's preference up front.
	require.NotEmpty(t, win.resizes)
	assert.Equal(t, vst3.ViewRect{Right: 640, Bottom: 400}, win.resizes[0])

	emb.Close()
	assert.Equal(t, int32(1), mock.Counters.ViewRemoved.Load())
}

// The resize round-trip scenario: the view constrains to 1024x768, the
// window reports 500x500, and the next window size request must be the
// constrained 1024x768.
func TestResizeRoundTrip(t *testing.T) {
	mock, inst := loadWithView(t, vst3mock.Options{
		ConstrainedRect: vst3.ViewRect{Right: 1024, Bottom: 768},
	})
	win := &fakeWindow{handle: 0x1}

	emb, err := Embed(inst, win)
	require.NoError(t, err)
	defer emb.Close()

	win.resizes = nil
	emb.OnWindowResized(500, 500)

	require.NotEmpty(t, win.resizes)
	assert.Equal(t, vst3.ViewRect{Right: 1024, Bottom: 768}, win.resizes[len(win.resizes)-1])
	// The view saw the constrained rect, not the raw window size.
	assert.Equal(t, vst3.ViewRect{Right: 1024, Bottom: 768}, mock.LastOnSize())
}

func TestEmbedWithoutViewFails(t *testing.T) {
	mock := vst3mock.New(vst3mock.Options{}) // no view
	inst, err := plugin.LoadFromFactory(mock.Factory(), plugin.Config{})
	require.NoError(t, err)
	defer func() {
		inst.Drop()
		mock.Close()
	}()

	_, err = Embed(inst, &fakeWindow{})
	assert.Error(t, err)
}

func TestDropAfterCloseDoesNotDoubleRemove(t *testing.T) {
	mock, inst := loadWithView(t, vst3mock.Options{})
	win := &fakeWindow{}

	emb, err := Embed(inst, win)
	require.NoError(t, err)
	emb.Close()
	inst.Drop()

	assert.Equal(t, int32(1), mock.Counters.ViewRemoved.Load())
}

// The plug-frame path: the plugin requests a window resize; the host obliges
// and confirms the new size to the view.
func TestPluginInitiatedResize(t *testing.T) {
	mock := vst3mock.New(vst3mock.Options{WithView: true})

	var emb *Embedding
	inst, err := plugin.LoadFromFactory(mock.Factory(), plugin.Config{
		OnResize: func(req vst3.ResizeRequest) {
			if emb != nil {
				emb.OnResizeRequest(req)
			}
		},
	})
	require.NoError(t, err)
	defer func() {
		inst.Drop()
		mock.Close()
	}()

	win := &fakeWindow{}
	emb, err = Embed(inst, win)
	require.NoError(t, err)
	defer emb.Close()

	win.resizes = nil
	res := mock.RequestResize(vst3.ViewRect{Right: 900, Bottom: 550})
	require.Equal(t, vst3.ResultOK, res)
	require.NotEmpty(t, win.resizes)
	assert.Equal(t, vst3.ViewRect{Right: 900, Bottom: 550}, win.resizes[0])
	assert.Equal(t, vst3.ViewRect{Right: 900, Bottom: 550}, mock.LastOnSize())
}
