package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	resultOK         = "ok"
	resultNotFound   = "not_found"
	resultValidation = "invalid"
	resultError      = "error"
)

type Metrics struct {
	Items      prometheus.GaugeFunc
	Operations *prometheus.CounterVec
}

// NewMetrics registers the item gauge, read from count on every scrape, and
// the per-operation outcome counter.
func NewMetrics(reg prometheus.Registerer, count func() int) *Metrics {
	m := &Metrics{
		Items: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "inventory_items",
				Help: "Items currently held in the inventory",
			},
			func() float64 { return float64(count()) },
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_operations_total",
				Help: "Inventory store operations by outcome",
			},
			[]string{"op", "result"},
		),
	}

	reg.MustRegister(m.Items, m.Operations)
	return m
}

func (m *Metrics) observe(op, result string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result).Inc()
}
