package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VaultMetrics holds all Prometheus metrics for the vault manager
type VaultMetrics struct {
	VaultsCreated prometheus.Counter
	VaultDeposits *prometheus.GaugeVec

	Deposits    *prometheus.CounterVec
	Withdrawals *prometheus.CounterVec

	// Flash loan metrics
	FlashLoans    *prometheus.CounterVec
	FlashLoanFees *prometheus.CounterVec
}

var (
	vaultMetricsOnce sync.Once
	vaultMetrics     *VaultMetrics
)

// NewVaultMetrics creates and registers vault manager metrics (singleton pattern)
func NewVaultMetrics() *VaultMetrics {
	vaultMetricsOnce.Do(func() {
		vaultMetrics = &VaultMetrics{
			VaultsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "vaultmanager",
					Name:      "vault_creations_total",
					Help:      "Total number of vaults created",
				},
			),
			VaultDeposits: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "lhub",
					Subsystem: "vaultmanager",
					Name:      "vault_total_deposits",
					Help:      "Current deposits of each vault",
				},
				[]string{"vault_identifier", "denom"},
			),
			Deposits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "vaultmanager",
					Name:      "deposits_total",
					Help:      "Number of vault deposits",
				},
				[]string{"vault_identifier"},
			),
			Withdrawals: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "vaultmanager",
					Name:      "withdrawals_total",
					Help:      "Number of vault withdrawals",
				},
				[]string{"vault_identifier"},
			),
			FlashLoans: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "vaultmanager",
					Name:      "flash_loans_total",
					Help:      "Number of settled flash loans",
				},
				[]string{"vault_identifier"},
			),
			FlashLoanFees: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lhub",
					Subsystem: "vaultmanager",
					Name:      "flash_loan_fees_total",
					Help:      "Flash loan fees charged in base units",
				},
				[]string{"vault_identifier", "kind"},
			),
		}
	})
	return vaultMetrics
}

func toFloat(v math.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}
