package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	healthCheckTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lhub_health_check_total",
			Help: "Total number of health check requests",
		},
		[]string{"endpoint", "status"},
	)

	healthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lhub_health_check_duration_seconds",
			Help:    "Health check request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"endpoint"},
	)

	serviceHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lhub_service_healthy",
			Help: "1 if the check passes, 0 if it fails",
		},
		[]string{"service"},
	)
)

// StateChecker reports on the state of the in-process app.
type StateChecker interface {
	CheckInvariants() error
	CurrentEpoch() (uint64, error)
	BlockHeight() int64
	Modules() map[string]ModuleHealth
}

// HealthCheck serves the health endpoints.
type HealthCheck struct {
	server  *http.Server
	checker StateChecker
	cache   *healthCache
}

type healthCache struct {
	mu          sync.RWMutex
	result      *DetailedHealthResponse
	lastChecked time.Time
	ttl         time.Duration
}

func newHealthCache(ttl time.Duration) *healthCache {
	return &healthCache{ttl: ttl}
}

func (c *healthCache) get() (*DetailedHealthResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.result == nil || time.Since(c.lastChecked) > c.ttl {
		return nil, false
	}
	return c.result, true
}

func (c *healthCache) set(result *DetailedHealthResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result = result
	c.lastChecked = time.Now()
}

// BasicHealthResponse is the response for /health
type BasicHealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the response for /health/ready
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// DetailedHealthResponse is the response for /health/detailed
type DetailedHealthResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Version       string                  `json:"version"`
	Checks        map[string]CheckResult  `json:"checks"`
	Modules       map[string]ModuleHealth `json:"modules"`
	System        SystemHealth            `json:"system"`
}

// CheckResult is the result of a single check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ModuleHealth holds module counters.
type ModuleHealth struct {
	Status  string         `json:"status"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// SystemHealth represents process-level metrics.
type SystemHealth struct {
	MemoryMB    uint64 `json:"memory_mb"`
	Goroutines  int    `json:"goroutines"`
	BlockHeight int64  `json:"block_height"`
}

// NewHealthCheck returns the health handlers over checker.
func NewHealthCheck(checker StateChecker) *HealthCheck {
	return &HealthCheck{
		checker: checker,
		cache:   newHealthCache(5 * time.Second),
	}
}

// RegisterRoutes registers the health endpoints on router.
func (hc *HealthCheck) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", hc.withHealthMetrics("health", hc.handleBasicHealth)).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", hc.withHealthMetrics("ready", hc.handleReadiness)).Methods(http.MethodGet)
	router.HandleFunc("/health/detailed", hc.withHealthMetrics("detailed", hc.handleDetailed)).Methods(http.MethodGet)
}

// StartHealthCheckServer serves the health endpoints on port in the
// background.
func StartHealthCheckServer(port int, checker StateChecker) *HealthCheck {
	hc := NewHealthCheck(checker)
	router := mux.NewRouter()
	hc.RegisterRoutes(router)

	hc.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		if err := hc.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("health check server error: %v\n", err)
		}
	}()
	return hc
}

func (hc *HealthCheck) withHealthMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		healthCheckTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", rw.statusCode)).Inc()
		healthCheckDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleBasicHealth answers 200 while the process is alive.
func (hc *HealthCheck) handleBasicHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BasicHealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (hc *HealthCheck) runChecks() (map[string]CheckResult, bool) {
	checks := make(map[string]CheckResult)
	healthy := true

	if err := hc.checker.CheckInvariants(); err != nil {
		checks["invariants"] = CheckResult{Status: "unhealthy", Message: err.Error()}
		healthy = false
		serviceHealthy.WithLabelValues("invariants").Set(0)
	} else {
		checks["invariants"] = CheckResult{Status: "ok"}
		serviceHealthy.WithLabelValues("invariants").Set(1)
	}

	if id, err := hc.checker.CurrentEpoch(); err != nil {
		checks["epoch"] = CheckResult{Status: "unhealthy", Message: err.Error()}
		healthy = false
		serviceHealthy.WithLabelValues("epoch").Set(0)
	} else {
		checks["epoch"] = CheckResult{Status: "ok", Message: fmt.Sprintf("epoch %d", id)}
		serviceHealthy.WithLabelValues("epoch").Set(1)
	}
	return checks, healthy
}

// handleReadiness answers 503 when an invariant is broken or no epoch runs.
func (hc *HealthCheck) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	checks, healthy := hc.runChecks()
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Checks: checks})
		return
	}
	writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: checks})
}

func (hc *HealthCheck) handleDetailed(w http.ResponseWriter, _ *http.Request) {
	if cached, ok := hc.cache.get(); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, statusCode(cached.Status), cached)
		return
	}

	checks, healthy := hc.runChecks()
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := &DetailedHealthResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Version:       getVersion(),
		Checks:        checks,
		Modules:       hc.checker.Modules(),
		System: SystemHealth{
			MemoryMB:    m.Alloc / 1024 / 1024,
			Goroutines:  runtime.NumGoroutine(),
			BlockHeight: hc.checker.BlockHeight(),
		},
	}
	hc.cache.set(response)

	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, statusCode(status), response)
}

func statusCode(status string) int {
	if status == "unhealthy" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Shutdown gracefully shuts down the health check server
func (hc *HealthCheck) Shutdown(ctx context.Context) error {
	if hc.server != nil {
		return hc.server.Shutdown(ctx)
	}
	return nil
}

func getVersion() string {
	if version := os.Getenv(envPrefix + "_VERSION"); version != "" {
		return version
	}
	return "dev"
}
