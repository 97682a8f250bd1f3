package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics tracks stock movements and summary builds.
type InventoryMetrics struct {
	mutations    *prometheus.CounterVec
	units        *prometheus.CounterVec
	summaryBuild *prometheus.HistogramVec
	drifted      prometheus.Gauge
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "stock_mutations_total",
		Help:      "Stock mutations applied, by inventory action.",
	}, []string{"action"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "units_moved_total",
		Help:      "Absolute units moved by stock mutations, by inventory action.",
	}, []string{"action"})
	summaryBuild := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "summary_build_seconds",
		Help:      "Time spent producing a monthly summary, by source.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
	drifted := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "drifted_products",
		Help:      "Products whose ledger sum differs from the available counter at the last audit.",
	})
	reg.MustRegister(mutations, units, summaryBuild, drifted)
	return &InventoryMetrics{
		mutations:    mutations,
		units:        units,
		summaryBuild: summaryBuild,
		drifted:      drifted,
	}
}

// RecordMutation counts one stock mutation and the units it moved.
func (m *InventoryMetrics) RecordMutation(action string, quantity int) {
	if m == nil || m.mutations == nil {
		return
	}
	label := normalizeLabel(action, "unknown")
	m.mutations.WithLabelValues(label).Inc()
	if quantity < 0 {
		quantity = -quantity
	}
	m.units.WithLabelValues(label).Add(float64(quantity))
}

// ObserveSummaryBuild records how long a summary took; source is "cache" or "store".
func (m *InventoryMetrics) ObserveSummaryBuild(source string, duration time.Duration) {
	if m == nil || m.summaryBuild == nil {
		return
	}
	m.summaryBuild.WithLabelValues(normalizeLabel(source, "store")).Observe(duration.Seconds())
}

// SetDriftedProducts publishes the result of the latest drift audit.
func (m *InventoryMetrics) SetDriftedProducts(count int) {
	if m == nil || m.drifted == nil {
		return
	}
	m.drifted.Set(float64(count))
}
