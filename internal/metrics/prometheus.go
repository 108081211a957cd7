// ABOUTME: Prometheus metrics for the client
// ABOUTME: Counts audio chunks, decode failures, events, uploads and snapshots
package metrics

import (
	"net/http"

	"github.com/jamradio/jamradio-go/pkg/audio"
	"github.com/jamradio/jamradio-go/pkg/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the client
type Metrics struct {
	registry *prometheus.Registry

	// Audio pipeline
	ChunksReceived  prometheus.Counter
	BytesReceived   prometheus.Counter
	ChunksDecoded   prometheus.Counter
	DecodeFailures  prometheus.Counter
	AudioSeconds    prometheus.Counter
	JitterDepth     prometheus.Gauge
	JitterThreshold prometheus.Gauge

	// Event multiplexer
	EventsEmitted *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec

	// Control channel
	Uploads         *prometheus.CounterVec
	UploadBytes     prometheus.Histogram
	SnapshotsParsed prometheus.Counter
	SnapshotErrors  prometheus.Counter
	Listeners       prometheus.Gauge
}

// New creates metrics registered on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ChunksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_audio_chunks_received_total",
			Help: "Total number of chunks read from the audio socket",
		}),
		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_audio_bytes_received_total",
			Help: "Total number of bytes read from the audio socket",
		}),
		ChunksDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_audio_chunks_decoded_total",
			Help: "Total number of chunks decoded to PCM",
		}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_audio_decode_failures_total",
			Help: "Total number of chunks dropped because they failed to decode",
		}),
		AudioSeconds: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_audio_decoded_seconds_total",
			Help: "Total duration of decoded audio",
		}),
		JitterDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jamradio_jitter_buffer_chunks",
			Help: "Chunks currently held in the jitter buffer",
		}),
		JitterThreshold: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jamradio_jitter_buffer_threshold",
			Help: "Current jitter buffer fill threshold",
		}),

		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamradio_events_emitted_total",
			Help: "Events delivered to the control loop",
		}, []string{"kind"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamradio_events_dropped_total",
			Help: "Events discarded because the event channel was full",
		}, []string{"kind"}),

		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamradio_control_requests_total",
			Help: "Frames sent on the control channel",
		}, []string{"frame", "result"}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jamradio_upload_size_bytes",
			Help:    "Size of uploaded song payloads",
			Buckets: prometheus.ExponentialBuckets(64<<10, 2, 10), // 64KB to ~32MB
		}),
		SnapshotsParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_state_snapshots_total",
			Help: "Server state snapshots applied",
		}),
		SnapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamradio_state_snapshot_errors_total",
			Help: "Server state updates that failed to parse",
		}),
		Listeners: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jamradio_active_listeners",
			Help: "Listener count from the latest server snapshot",
		}),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ChunkReceived implements stream.Observer
func (m *Metrics) ChunkReceived(bytes int) {
	m.ChunksReceived.Inc()
	m.BytesReceived.Add(float64(bytes))
}

// ChunkDecoded implements stream.Observer
func (m *Metrics) ChunkDecoded(buf audio.Buffer) {
	m.ChunksDecoded.Inc()
	m.AudioSeconds.Add(buf.Duration().Seconds())
}

// DecodeFailed implements stream.Observer
func (m *Metrics) DecodeFailed() {
	m.DecodeFailures.Inc()
}

// BufferDepth implements stream.Observer
func (m *Metrics) BufferDepth(chunks, threshold int) {
	m.JitterDepth.Set(float64(chunks))
	m.JitterThreshold.Set(float64(threshold))
}

// EventEmitted is an event.Config OnEmit hook
func (m *Metrics) EventEmitted(k event.Kind) {
	m.EventsEmitted.WithLabelValues(k.String()).Inc()
}

// EventDropped is an event.Config OnDrop hook
func (m *Metrics) EventDropped(k event.Kind) {
	m.EventsDropped.WithLabelValues(k.String()).Inc()
}

// RequestSent implements app.Recorder. frame is "upload" or "queue"; size
// is the encoded frame length.
func (m *Metrics) RequestSent(frame string, size int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Uploads.WithLabelValues(frame, result).Inc()
	if frame == "upload" && err == nil {
		m.UploadBytes.Observe(float64(size))
	}
}

// SnapshotApplied implements app.Recorder
func (m *Metrics) SnapshotApplied(listeners int) {
	m.SnapshotsParsed.Inc()
	m.Listeners.Set(float64(listeners))
}

// SnapshotFailed implements app.Recorder
func (m *Metrics) SnapshotFailed() {
	m.SnapshotErrors.Inc()
}
