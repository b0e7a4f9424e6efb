package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brewops_confirmations_total",
		Help: "Production operations confirmed, by operation type.",
	}, []string{"operation_type"})

	StockConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brewops_stock_conflicts_total",
		Help: "Conditional stock writes that lost to a concurrent confirmation and were retried.",
	})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brewops_low_stock_alerts_total",
		Help: "Low-stock notifications sent after confirmations.",
	})
)
