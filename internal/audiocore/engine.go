package audiocore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/errors"
	"github.com/tphakala/plughost/internal/logging"
	"github.com/tphakala/plughost/internal/observability/metrics"
	"github.com/tphakala/plughost/internal/plugin"
	"github.com/tphakala/plughost/internal/vst3"
)

// Engine owns the full realtime path: backend context, capture and playback
// devices, the plugin registry, the preallocated process block, the
// resampler and the output ring. All control operations serialize on one
// mutex; the two driver callbacks run lock-free against state that only
// changes while both devices are stopped.
type Engine struct {
	mu      sync.Mutex
	logger  *slog.Logger
	metrics *metrics.EngineMetrics

	sampleRate int
	blockSize  int
	channels   int

	backendName string
	inputName   string
	outputName  string

	ctx         *malgo.AllocatedContext
	captureDev  *malgo.Device
	playbackDev *malgo.Device

	// Device names are snapshot once per context init; exclusive backends
	// serve enumeration from the snapshot because re-enumeration there is
	// destructive.
	inputSnapshot  []DeviceInfo
	outputSnapshot []DeviceInfo

	registry  *plugin.Registry
	block     *processBlock
	ring      *Ring
	resampler *SincResampler

	// interleave scratch between resampler and ring, and the playback
	// callback's pop target. Preallocated to their maximums.
	interleaved []float32
	popBuf      []float32

	tapEnabled bool
	tapDir     string
	tap        *captureTap

	running bool
}

// New builds an engine from settings. Streams are not opened until Run.
func New(settings *conf.Settings, m *metrics.EngineMetrics) (*Engine, error) {
	audio := &settings.Audio
	if audio.BlockSize > MaxBlockSize {
		return nil, errors.Newf("block size %d exceeds the maximum of %d", audio.BlockSize, MaxBlockSize).
			Component("audiocore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	logger := logging.ForService("audiocore")
	if logger == nil {
		logger = slog.Default()
	}
	tapPath := audio.Capture.Path
	if audio.Capture.Enabled {
		tapPath = conf.GetBasePath(tapPath)
	}
	e := &Engine{
		logger:      logger,
		metrics:     m,
		sampleRate:  audio.SampleRate,
		blockSize:   audio.BlockSize,
		channels:    audio.Channels,
		backendName: audio.Backend,
		inputName:   audio.InputDevice,
		outputName:  audio.OutputDevice,
		registry:    plugin.NewRegistry(),
		block:       newProcessBlock(audio.Channels),
		ring:        NewRing(2 * audio.BlockSize * audio.Channels),
		interleaved: make([]float32, (2*MaxBlockSize+2)*audio.Channels),
		popBuf:      make([]float32, MaxBlockSize*audio.Channels),
		tapEnabled:  audio.Capture.Enabled,
		tapDir:      tapPath,
	}
	return e, nil
}

// Registry exposes the plugin registry for status reporting.
func (e *Engine) Registry() *plugin.Registry { return e.registry }

// CurrentBackend returns the active backend name.
func (e *Engine) CurrentBackend() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backendName
}

// InputDevice returns the selected capture device name.
func (e *Engine) InputDevice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inputName
}

// OutputDevice returns the selected playback device name.
func (e *Engine) OutputDevice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outputName
}

// Run opens the backend context if needed, builds the capture and playback
// streams for the current selection and starts both. Idempotent while
// running.
func (e *Engine) Run() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runLocked()
}

func (e *Engine) runLocked() error {
	if e.running {
		return nil
	}
	if err := e.ensureContextLocked(); err != nil {
		return err
	}

	// Exclusive backends drive one duplex endpoint; mirror the selection.
	if backendExclusive(e.backendName) {
		e.outputName = e.inputName
	}

	inDev, err := selectDevice(e.inputSnapshot, e.inputName)
	if err != nil {
		return err
	}
	outDev, err := selectDevice(e.outputSnapshot, e.outputName)
	if err != nil {
		return err
	}
	e.inputName = inDev.Name
	e.outputName = outDev.Name

	capture, err := e.initCaptureLocked(inDev)
	if err != nil {
		return err
	}
	playback, err := e.initPlaybackLocked(outDev)
	if err != nil {
		capture.Uninit()
		return err
	}

	inRate := int(capture.SampleRate())
	outRate := int(playback.SampleRate())
	resampler, err := NewSincResampler(inRate, outRate, e.channels)
	if err != nil {
		capture.Uninit()
		playback.Uninit()
		return err
	}
	e.resampler = resampler
	e.ring.Reset()

	if e.tapEnabled && e.tap == nil {
		tap, err := newCaptureTap(e.tapDir, inRate, e.channels)
		if err != nil {
			e.logger.Warn("capture tap disabled", "error", err)
		} else {
			e.tap = tap
		}
	}

	e.captureDev = capture
	e.playbackDev = playback

	if err := capture.Start(); err != nil {
		e.teardownStreamsLocked()
		return e.deviceErr("start_capture", err)
	}
	if err := playback.Start(); err != nil {
		e.teardownStreamsLocked()
		return e.deviceErr("start_playback", err)
	}

	e.running = true
	e.metrics.RecordStreamRebuild()
	e.logger.Info("audio streams running",
		"backend", e.backendName,
		"input", e.inputName,
		"output", e.outputName,
		"sample_rate", e.sampleRate,
		"block_size", e.blockSize,
		"channels", e.channels,
		"resample_ratio", e.resampler.Ratio())
	return nil
}

func (e *Engine) ensureContextLocked() error {
	if e.ctx != nil {
		return nil
	}
	backend, err := backendFromName(e.backendName)
	if err != nil {
		return err
	}
	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return e.deviceErr("init_context", err)
	}
	e.ctx = ctx

	if e.inputSnapshot, err = enumerateDevices(ctx, malgo.Capture); err != nil {
		_ = ctx.Uninit()
		e.ctx = nil
		return err
	}
	if e.outputSnapshot, err = enumerateDevices(ctx, malgo.Playback); err != nil {
		_ = ctx.Uninit()
		e.ctx = nil
		return err
	}
	e.logger.Debug("device snapshot taken",
		"backend", e.backendName,
		"inputs", len(e.inputSnapshot),
		"outputs", len(e.outputSnapshot))
	return nil
}

func (e *Engine) initCaptureLocked(dev *DeviceInfo) (*malgo.Device, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.SampleRate = uint32(e.sampleRate)
	cfg.PeriodSizeInFrames = uint32(e.blockSize)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(e.channels)
	cfg.Capture.DeviceID = dev.ID.Pointer()
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frames uint32) {
			e.onCapture(pInput, int(frames))
		},
		Stop: func() {
			e.logger.Debug("capture device stopped", "device", dev.Name)
		},
	}
	device, err := malgo.InitDevice(e.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, e.deviceErr("init_capture_device", err)
	}
	return device, nil
}

func (e *Engine) initPlaybackLocked(dev *DeviceInfo) (*malgo.Device, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.SampleRate = uint32(e.sampleRate)
	cfg.PeriodSizeInFrames = uint32(e.blockSize)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(e.channels)
	cfg.Playback.DeviceID = dev.ID.Pointer()
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frames uint32) {
			e.onPlayback(pOutput, int(frames))
		},
		Stop: func() {
			e.logger.Debug("playback device stopped", "device", dev.Name)
		},
	}
	device, err := malgo.InitDevice(e.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, e.deviceErr("init_playback_device", err)
	}
	return device, nil
}

// onCapture is the real-time capture callback: deinterleave, run the plugin
// chain, resample, push to the ring. Nothing here allocates or blocks; a
// contended registry degrades to silence for the block.
func (e *Engine) onCapture(pInput []byte, frames int) {
	start := time.Now()
	if frames > MaxBlockSize {
		e.metrics.RecordCaptureDrop()
		return
	}
	n := DeinterleaveS16LE(pInput, e.channels, e.block.in)
	if n == 0 {
		return
	}
	if e.tap != nil {
		e.tap.write(pInput[:n*e.channels*BytesPerSample])
	}

	e.block.prepare(n, vst3.ProcessModeRealtime)
	if items, ok := e.registry.TryRead(); ok {
		first := true
		for _, p := range items {
			if p.State() != plugin.StateProcessing {
				continue
			}
			if !first {
				e.block.chain(n)
			}
			if res := p.Processor().Process(&e.block.data); !res.OK() {
				e.metrics.RecordProcessError()
			}
			first = false
		}
		e.registry.ReadDone()
	} else {
		e.metrics.RecordRegistryContention()
	}

	out, produced := e.resampler.Process(e.block.out, n)
	samples := Interleave(out, produced, e.interleaved)
	pushed := e.ring.Push(e.interleaved[:samples])
	if pushed < samples {
		e.metrics.RecordRingOverrun(samples - pushed)
	}
	e.metrics.RecordBlockProcessed()
	e.metrics.ObserveProcessDuration(time.Since(start).Seconds())
}

// onPlayback is the real-time output callback: drain the ring, emit silence
// for whatever is missing. Never blocks.
func (e *Engine) onPlayback(pOutput []byte, frames int) {
	need := frames * e.channels
	if need > len(e.popBuf) {
		need = len(e.popBuf)
	}
	n := e.ring.Pop(e.popBuf[:need])
	if n < need {
		clearF32(e.popBuf[n:need])
		e.metrics.RecordRingUnderrun()
	}
	InterleaveToS16LE(e.popBuf[:need], pOutput)
	// A driver period larger than the preallocated maximum cannot happen
	// with the validated block size, but never leave stale bytes audible.
	for i := need * BytesPerSample; i < len(pOutput); i++ {
		pOutput[i] = 0
	}
	e.metrics.SetRingFill(e.ring.Len())
}

// Stop pauses and drops both streams. In-flight callbacks complete before
// the device handles are released.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if !e.running {
		return
	}
	e.teardownStreamsLocked()
	e.running = false
}

func (e *Engine) teardownStreamsLocked() {
	if e.captureDev != nil {
		_ = e.captureDev.Stop()
		e.captureDev.Uninit()
		e.captureDev = nil
	}
	if e.playbackDev != nil {
		_ = e.playbackDev.Stop()
		e.playbackDev.Uninit()
		e.playbackDev = nil
	}
	if e.tap != nil {
		if err := e.tap.close(); err != nil {
			e.logger.Warn("capture tap close failed", "error", err)
		}
		e.tap = nil
	}
}

// AddPlugin loads the module at path, enables processing and appends the
// instance to the registry. A failing plugin is not added; the error
// carries the plugin's status.
func (e *Engine) AddPlugin(path string) (*plugin.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, err := plugin.Load(path, plugin.Config{
		SampleRate:   float64(e.sampleRate),
		MaxBlockSize: int32(MaxBlockSize),
	})
	if err != nil {
		return nil, err
	}
	if err := inst.SetProcessing(true); err != nil {
		inst.Drop()
		return nil, err
	}
	e.registry.Add(inst)
	e.metrics.SetActivePlugins(e.registry.Len())
	e.logger.Info("plugin added",
		"plugin", inst.ClassName,
		"path", path,
		"registry_size", e.registry.Len())
	return inst, nil
}

// RemovePlugin takes the instance out of the registry and tears it down.
func (e *Engine) RemovePlugin(inst *plugin.Instance) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registry.Remove(inst) {
		inst.Drop()
		e.metrics.SetActivePlugins(e.registry.Len())
	}
}

// SelectBackend tears down both streams, switches the backend context and
// rebuilds on default devices. Selecting the running backend is a no-op.
func (e *Engine) SelectBackend(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == e.backendName && e.running {
		return nil
	}
	if _, err := backendFromName(name); err != nil {
		return err
	}
	e.stopLocked()
	e.dropContextLocked()
	e.backendName = name
	e.inputName = ""
	e.outputName = ""
	return e.runLocked()
}

// SelectInputDevice rebuilds the stream pair on the named capture device.
// On an exclusive backend the playback side mirrors the selection.
func (e *Engine) SelectInputDevice(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.inputName = name
	if backendExclusive(e.backendName) {
		e.outputName = name
	}
	return e.runLocked()
}

// SelectOutputDevice rebuilds the stream pair on the named playback device.
// On an exclusive backend the capture side mirrors the selection.
func (e *Engine) SelectOutputDevice(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.outputName = name
	if backendExclusive(e.backendName) {
		e.inputName = name
	}
	return e.runLocked()
}

// EnumerateInputDevices lists capture device names for the current backend.
// Exclusive backends are served from the startup snapshot.
func (e *Engine) EnumerateInputDevices() ([]string, error) {
	return e.enumerate(malgo.Capture)
}

// EnumerateOutputDevices lists playback device names for the current
// backend. Exclusive backends are served from the startup snapshot.
func (e *Engine) EnumerateOutputDevices() ([]string, error) {
	return e.enumerate(malgo.Playback)
}

func (e *Engine) enumerate(deviceType malgo.DeviceType) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureContextLocked(); err != nil {
		return nil, err
	}
	if backendExclusive(e.backendName) {
		if deviceType == malgo.Capture {
			return deviceNames(e.inputSnapshot), nil
		}
		return deviceNames(e.outputSnapshot), nil
	}
	devices, err := enumerateDevices(e.ctx, deviceType)
	if err != nil {
		return nil, err
	}
	return deviceNames(devices), nil
}

func (e *Engine) dropContextLocked() {
	if e.ctx != nil {
		_ = e.ctx.Uninit()
		e.ctx = nil
		e.inputSnapshot = nil
		e.outputSnapshot = nil
	}
}

// Close stops the streams, drops every plugin and releases the context and
// process block.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopLocked()
	e.dropContextLocked()
	e.mu.Unlock()

	e.registry.DrainAndDrop()
	e.metrics.SetActivePlugins(0)

	e.mu.Lock()
	if e.block != nil {
		e.block.release()
		e.block = nil
	}
	e.mu.Unlock()
}

func (e *Engine) deviceErr(operation string, err error) error {
	return errors.New(err).
		Component("audiocore").
		Category(errors.CategoryAudioDevice).
		Context("backend", e.backendName).
		Context("operation", operation).
		Build()
}
