package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/lhub/x/poolmanager/types"
)

// PoolMetrics holds all Prometheus metrics for the pool manager
type PoolMetrics struct {
	// Swap metrics
	SwapsTotal        *prometheus.CounterVec
	SwapVolume        *prometheus.CounterVec
	SwapFeesCollected *prometheus.CounterVec

	// Liquidity metrics
	LiquidityProvided  *prometheus.CounterVec
	LiquidityWithdrawn *prometheus.CounterVec
	PoolReserves       *prometheus.GaugeVec

	// Pool metrics
	PoolsCreated prometheus.Counter
}

var (
	poolMetricsOnce sync.Once
	poolMetrics     *PoolMetrics
)

// NewPoolMetrics creates and registers pool manager metrics (singleton pattern)
func NewPoolMetrics() *PoolMetrics {
	poolMetricsOnce.Do(func() {
		poolMetrics = &PoolMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_identifier", "offer_denom", "ask_denom"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "swap_volume_total",
					Help:      "Total offered swap volume in base units",
				},
				[]string{"pool_identifier", "denom"},
			),
			SwapFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "swap_fees_collected_total",
					Help:      "Total swap, protocol and burn fees charged",
				},
				[]string{"pool_identifier", "denom", "kind"},
			),
			LiquidityProvided: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "liquidity_provided_total",
					Help:      "Number of liquidity deposits",
				},
				[]string{"pool_identifier"},
			),
			LiquidityWithdrawn: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "liquidity_withdrawn_total",
					Help:      "Number of liquidity withdrawals",
				},
				[]string{"pool_identifier"},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "pool_reserves",
					Help:      "Current pool reserves",
				},
				[]string{"pool_identifier", "denom"},
			),
			PoolsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "poolmanager",
					Name:      "pool_creations_total",
					Help:      "Total number of pools created",
				},
			),
		}
	})
	return poolMetrics
}

// recordReserves publishes the reserves of pool.
func (m *PoolMetrics) recordReserves(pool types.Pool) {
	for i, denom := range pool.AssetDenoms {
		m.PoolReserves.WithLabelValues(pool.Identifier, denom).Set(toFloat(pool.Reserves[i]))
	}
}
