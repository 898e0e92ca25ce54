package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records counters for stock movements.
type InventoryMetrics struct {
	transfers     *prometheus.CounterVec
	adjustments   *prometheus.CounterVec
	clampedDebits prometheus.Counter
	statusGauge   *prometheus.GaugeVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_transfers_total",
		Help: "Completed warehouse transfers.",
	}, []string{"kind"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_stock_adjustments_total",
		Help: "Stock adjustments by direction.",
	}, []string{"direction"})
	clampedDebits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_clamped_debits_total",
		Help: "Debits clamped at zero because the requested quantity exceeded stock.",
	})
	statusGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inventory_products_by_status",
		Help: "Products per stock status.",
	}, []string{"status"})
	reg.MustRegister(transfers, adjustments, clampedDebits, statusGauge)
	return &InventoryMetrics{
		transfers:     transfers,
		adjustments:   adjustments,
		clampedDebits: clampedDebits,
		statusGauge:   statusGauge,
	}
}

// IncTransfer increments the transfer counter for the given kind (single or bulk).
func (m *InventoryMetrics) IncTransfer(kind string) {
	if m == nil || m.transfers == nil {
		return
	}
	m.transfers.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncAdjustment increments the adjustment counter for the given direction (debit or credit).
func (m *InventoryMetrics) IncAdjustment(direction string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(direction)).Inc()
}

// IncClampedDebit increments the clamped-debit counter.
func (m *InventoryMetrics) IncClampedDebit() {
	if m == nil || m.clampedDebits == nil {
		return
	}
	m.clampedDebits.Inc()
}

// SetStatusCount sets the gauge for the number of products in a stock status.
func (m *InventoryMetrics) SetStatusCount(status string, count float64) {
	if m == nil || m.statusGauge == nil {
		return
	}
	m.statusGauge.WithLabelValues(normalizeLabel(status)).Set(count)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
