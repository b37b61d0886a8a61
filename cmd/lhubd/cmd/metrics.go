package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var scenarioStepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lhub_scenario_steps_total",
		Help: "Scenario steps run by lhubd",
	},
	[]string{"msg", "status"},
)

// StartPrometheusServer serves /metrics on port in the background. Keeper
// collectors register on the default registry, so they show up here too.
func StartPrometheusServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("prometheus server error: %v\n", err)
		}
	}()
	return server
}
