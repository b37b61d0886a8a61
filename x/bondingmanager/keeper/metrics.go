package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BondingMetrics holds all Prometheus metrics for the bonding manager
type BondingMetrics struct {
	EpochsCreated   prometheus.Counter
	FeesDistributed *prometheus.CounterVec
	Claims          prometheus.Counter
	Bonded          *prometheus.GaugeVec
}

var (
	bondingMetricsOnce sync.Once
	bondingMetrics     *BondingMetrics
)

// NewBondingMetrics creates and registers bonding manager metrics (singleton pattern)
func NewBondingMetrics() *BondingMetrics {
	bondingMetricsOnce.Do(func() {
		bondingMetrics = &BondingMetrics{
			EpochsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "bondingmanager",
					Name:      "epochs_created_total",
					Help:      "Total number of fee epochs created",
				},
			),
			FeesDistributed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "bondingmanager",
					Name:      "epoch_fees_total",
					Help:      "Fees placed into epochs, including forwarded remainders",
				},
				[]string{"denom"},
			),
			Claims: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "bondingmanager",
					Name:      "claims_total",
					Help:      "Total number of reward claims",
				},
			),
			Bonded: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "lhub",
					Subsystem: "bondingmanager",
					Name:      "bonded",
					Help:      "Amount currently bonded",
				},
				[]string{"denom"},
			),
		}
	})
	return bondingMetrics
}

func toFloat(v math.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}
