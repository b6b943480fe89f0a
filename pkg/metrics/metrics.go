package metrics

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// Metric holds the data points of one finished command invocation.
type Metric struct {
	Point    string           // Hook point the command is bound to (e.g. "label").
	Status   types.ExitStatus // How the invocation ended.
	Duration time.Duration    // Wall-clock duration of the invocation.
}

// Metrics handles processing and exposing invocation metrics.
type Metrics struct {
	channel      chan *Metric             // Channel for queuing metrics.
	invocations  *prometheus.CounterVec   // Counter of invocations by point and status.
	duration     *prometheus.HistogramVec // Histogram of invocation durations by point.
	inFlight     *prometheus.GaugeVec     // Gauge of running invocations by point.
	dropped      prometheus.Counter       // Counter for dropped metrics.
	stopCh       chan struct{}            // Channel for shutdown signaling.
	doneCh       chan struct{}            // Closed once the handler has drained and exited.
	shutdownOnce sync.Once                // Ensures shutdown is called only once.
}

// NewWithRegistry creates a new Metrics handler with a custom Prometheus registry.
//
// Parameters:
//   - registry: Prometheus registerer to use for metric registration.
//
// Returns:
//   - (*Metrics, error): Metrics handler with Prometheus metrics and goroutine, or an error if registration fails.
func NewWithRegistry(registry prometheus.Registerer) (*Metrics, error) {
	// channelBufferSize sets the metrics channel capacity.
	const channelBufferSize = 64

	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commandhook_invocations_total",
			Help: "Number of external command invocations by hook point and exit status",
		}, []string{"point", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "commandhook_invocation_duration_seconds",
			Help:    "Duration of external command invocations, including timeouts",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"point"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commandhook_invocations_in_flight",
			Help: "Number of external commands currently running by hook point",
		}, []string{"point"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commandhook_metrics_dropped_total",
			Help: "Number of metrics dropped due to full channel",
		}),
		channel: make(chan *Metric, channelBufferSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	metricsList := []prometheus.Collector{
		m.invocations,
		m.duration,
		m.inFlight,
		m.dropped,
	}
	for _, collector := range metricsList {
		if err := registry.Register(collector); err != nil {
			alreadyRegisteredError := &prometheus.AlreadyRegisteredError{}
			if errors.As(err, alreadyRegisteredError) {
				return nil, fmt.Errorf("%w: %w", errAlreadyRegistered, err)
			}

			return nil, fmt.Errorf("%w: %w", errRegisterFailed, err)
		}
	}

	// Start goroutine to process metrics.
	go m.HandleUpdate()

	return m, nil
}

// QueueIsEmpty checks if the metrics channel is empty.
//
// Returns:
//   - bool: True if empty, false otherwise.
func (m *Metrics) QueueIsEmpty() bool {
	return len(m.channel) == 0
}

// Register attempts to enqueue a metric for processing.
// If the channel is full, the metric is dropped and the dropped counter is incremented.
//
// Parameters:
//   - metric: Metric to register.
func (m *Metrics) Register(metric *Metric) {
	select {
	case m.channel <- metric:
		// Metric sent successfully
	default:
		// Channel is full, drop the metric
		m.dropped.Inc()
	}
}

// Started marks an invocation of point as running.
func (m *Metrics) Started(point string) {
	m.inFlight.WithLabelValues(point).Inc()
}

// Finished marks an invocation of point as no longer running.
func (m *Metrics) Finished(point string) {
	m.inFlight.WithLabelValues(point).Dec()
}

// Shutdown stops the processing goroutine after the queued metrics are applied.
// This method is idempotent and can be called multiple times safely.
func (m *Metrics) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
	})

	<-m.doneCh
}

// HandleUpdate processes metrics from the channel.
func (m *Metrics) HandleUpdate() {
	defer close(m.doneCh)

	for {
		select {
		case change := <-m.channel:
			m.apply(change)
		case <-m.stopCh:
			// Drain what was queued before shutdown.
			for {
				select {
				case change := <-m.channel:
					m.apply(change)
				default:
					return
				}
			}
		}
	}
}

// apply records a single metric.
func (m *Metrics) apply(change *Metric) {
	if change == nil {
		return
	}

	m.invocations.WithLabelValues(change.Point, change.Status.String()).Inc()
	m.duration.WithLabelValues(change.Point).Observe(change.Duration.Seconds())
}
