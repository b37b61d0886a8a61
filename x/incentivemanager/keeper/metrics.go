package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IncentiveMetrics holds all Prometheus metrics for the incentive manager
type IncentiveMetrics struct {
	IncentivesCreated prometheus.Counter
	IncentivesClosed  prometheus.Counter
	PositionsFilled   prometheus.Counter
	Claims            prometheus.Counter
}

var (
	incentiveMetricsOnce sync.Once
	incentiveMetrics     *IncentiveMetrics
)

// NewIncentiveMetrics creates and registers incentive manager metrics (singleton pattern)
func NewIncentiveMetrics() *IncentiveMetrics {
	incentiveMetricsOnce.Do(func() {
		incentiveMetrics = &IncentiveMetrics{
			IncentivesCreated: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lhub",
				Subsystem: "incentivemanager",
				Name:      "incentives_created_total",
				Help:      "Total number of incentives created",
			}),
			IncentivesClosed: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lhub",
				Subsystem: "incentivemanager",
				Name:      "incentives_closed_total",
				Help:      "Total number of incentives closed",
			}),
			PositionsFilled: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lhub",
				Subsystem: "incentivemanager",
				Name:      "positions_filled_total",
				Help:      "Total number of position fills",
			}),
			Claims: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lhub",
				Subsystem: "incentivemanager",
				Name:      "claims_total",
				Help:      "Total number of reward claims",
			}),
		}
	})
	return incentiveMetrics
}
