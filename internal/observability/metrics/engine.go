// Package metrics provides Prometheus collectors for the audio path.
// The real-time callbacks only touch pre-bound counters, which are atomic
// increments with no allocation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics contains Prometheus metrics for the audio engine.
type EngineMetrics struct {
	registry *prometheus.Registry

	blocksProcessed    prometheus.Counter
	ringUnderruns      prometheus.Counter
	ringOverrunSamples prometheus.Counter
	captureDrops       prometheus.Counter
	registryContention prometheus.Counter
	processErrors      prometheus.Counter
	processDuration    prometheus.Histogram
	ringFill           prometheus.Gauge
	activePlugins      prometheus.Gauge
	streamRebuilds     prometheus.Counter
}

// NewEngineMetrics creates and registers the audio engine metrics.
func NewEngineMetrics(registry *prometheus.Registry) (*EngineMetrics, error) {
	m := &EngineMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *EngineMetrics) initMetrics() error {
	m.blocksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_audio_blocks_processed_total",
		Help: "Total number of audio blocks run through the plugin chain",
	})
	m.ringUnderruns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_ring_underruns_total",
		Help: "Output callbacks that drained the ring and emitted silence",
	})
	m.ringOverrunSamples = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_ring_overrun_samples_total",
		Help: "Samples dropped because the ring buffer was full",
	})
	m.captureDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_capture_dropped_blocks_total",
		Help: "Capture blocks dropped before processing",
	})
	m.registryContention = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_registry_contention_total",
		Help: "Capture callbacks that skipped the plugin chain because the registry write lock was held",
	})
	m.processErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_process_errors_total",
		Help: "Plugin process calls that returned a failure status",
	})
	m.processDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plughost_process_duration_seconds",
		Help:    "Wall time of one full capture-callback pass",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
	})
	m.ringFill = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plughost_ring_fill_samples",
		Help: "Unread samples in the output ring",
	})
	m.activePlugins = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plughost_active_plugins",
		Help: "Plugin instances in the processing registry",
	})
	m.streamRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plughost_stream_rebuilds_total",
		Help: "Times the stream pair was torn down and rebuilt",
	})

	collectors := []prometheus.Collector{
		m.blocksProcessed,
		m.ringUnderruns,
		m.ringOverrunSamples,
		m.captureDrops,
		m.registryContention,
		m.processErrors,
		m.processDuration,
		m.ringFill,
		m.activePlugins,
		m.streamRebuilds,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordBlockProcessed counts one completed capture-callback pass.
func (m *EngineMetrics) RecordBlockProcessed() {
	m.blocksProcessed.Inc()
}

// RecordRingUnderrun counts an output callback that ran the ring dry.
func (m *EngineMetrics) RecordRingUnderrun() {
	m.ringUnderruns.Inc()
}

// RecordRingOverrun counts samples dropped on a full ring.
func (m *EngineMetrics) RecordRingOverrun(samples int) {
	m.ringOverrunSamples.Add(float64(samples))
}

// RecordCaptureDrop counts a capture block dropped before processing.
func (m *EngineMetrics) RecordCaptureDrop() {
	m.captureDrops.Inc()
}

// RecordRegistryContention counts a skipped plugin chain.
func (m *EngineMetrics) RecordRegistryContention() {
	m.registryContention.Inc()
}

// RecordProcessError counts a failed plugin process call.
func (m *EngineMetrics) RecordProcessError() {
	m.processErrors.Inc()
}

// ObserveProcessDuration records the wall time of one capture pass.
func (m *EngineMetrics) ObserveProcessDuration(seconds float64) {
	m.processDuration.Observe(seconds)
}

// SetRingFill publishes the current ring occupancy.
func (m *EngineMetrics) SetRingFill(samples int) {
	m.ringFill.Set(float64(samples))
}

// SetActivePlugins publishes the registry size.
func (m *EngineMetrics) SetActivePlugins(count int) {
	m.activePlugins.Set(float64(count))
}

// RecordStreamRebuild counts a stream pair teardown and rebuild.
func (m *EngineMetrics) RecordStreamRebuild() {
	m.streamRebuilds.Inc()
}
