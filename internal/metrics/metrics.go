package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScanMetrics instruments the scan loop. A nil *ScanMetrics is a no-op.
type ScanMetrics struct {
	sourceBlockGauge   prometheus.Gauge
	scannedBlockGauge  prometheus.Gauge
	tickCount          *prometheus.CounterVec
	tickDuration       prometheus.Histogram
	fetchedLogCount    *prometheus.CounterVec
	decodeErrorCount   *prometheus.CounterVec
	notificationCount  *prometheus.CounterVec
	dispatchErrorCount prometheus.Counter
}

// NewScanMetrics registers the scan metrics with reg under namespace.
func NewScanMetrics(reg prometheus.Registerer, namespace string) *ScanMetrics {
	factory := promauto.With(reg)
	m := ScanMetrics{
		// chain position
		sourceBlockGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_source_block", namespace),
			Help: "The latest known chain tip",
		}),
		scannedBlockGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_scanned_block", namespace),
			Help: "The last fully scanned block",
		}),
		// tick outcome
		tickCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_tick_count", namespace),
			Help: "The total number of scan ticks by result",
		}, []string{"result"}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_tick_duration_seconds", namespace),
			Help:    "The duration of committed scan ticks",
			Buckets: prometheus.DefBuckets,
		}),
		// per contract
		fetchedLogCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_fetched_log_count", namespace),
			Help: "The total number of fetched ballot logs",
		}, []string{"contract"}),
		decodeErrorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_decode_error_count", namespace),
			Help: "The total number of skipped ballot logs",
		}, []string{"contract", "reason"}),
		notificationCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_notification_count", namespace),
			Help: "The total number of dispatched notifications",
		}, []string{"contract"}),
		dispatchErrorCount: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_dispatch_error_count", namespace),
			Help: "The total number of failed dispatches",
		}),
	}
	return &m
}

func (m *ScanMetrics) SetSourceBlock(block uint64) {
	if m == nil {
		return
	}
	m.sourceBlockGauge.Set(float64(block))
}

func (m *ScanMetrics) SetScannedBlock(block uint64) {
	if m == nil {
		return
	}
	m.scannedBlockGauge.Set(float64(block))
}

// ObserveTick records one tick; result is "committed", "idle" or "aborted".
func (m *ScanMetrics) ObserveTick(result string, seconds float64) {
	if m == nil {
		return
	}
	m.tickCount.WithLabelValues(result).Inc()
	if result == "committed" {
		m.tickDuration.Observe(seconds)
	}
}

func (m *ScanMetrics) AddFetchedLogs(contract string, n int) {
	if m == nil {
		return
	}
	m.fetchedLogCount.WithLabelValues(contract).Add(float64(n))
}

func (m *ScanMetrics) IncDecodeErrors(contract, reason string) {
	if m == nil {
		return
	}
	m.decodeErrorCount.WithLabelValues(contract, reason).Inc()
}

func (m *ScanMetrics) IncNotifications(contract string) {
	if m == nil {
		return
	}
	m.notificationCount.WithLabelValues(contract).Inc()
}

func (m *ScanMetrics) IncDispatchErrors() {
	if m == nil {
		return
	}
	m.dispatchErrorCount.Inc()
}
