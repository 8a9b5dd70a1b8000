package router

import (
	"sync"
)

// MetricsSnapshot is a point-in-time copy of the routing statistics.
type MetricsSnapshot struct {
	// TotalClaims is the number of claims routed since the last reset.
	TotalClaims int64 `json:"total_claims"`

	// RoutedClaims counts claims per route type.
	RoutedClaims map[RouteType]int64 `json:"routed_claims"`

	// AverageProcessingTime is the running mean routing time per route type, in milliseconds.
	AverageProcessingTime map[RouteType]float64 `json:"average_processing_time_ms"`

	// ApprovalRates is reserved for adjudication feedback and is not populated by the router.
	ApprovalRates map[RouteType]float64 `json:"approval_rates"`

	// AIOptimizations counts routed claims the optimizer changed.
	AIOptimizations int64 `json:"ai_optimizations"`
}

// Metrics aggregates routing statistics across concurrent callers.
// All mutation goes through its methods.
type Metrics struct {
	mu    sync.RWMutex
	stats MetricsSnapshot
}

// NewMetrics creates an empty aggregator.
func NewMetrics() *Metrics {
	return &Metrics{stats: emptySnapshot()}
}

// Record counts one routed claim and folds its elapsed time into the route's running mean.
func (m *Metrics) Record(t RouteType, elapsedMillis float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(t, elapsedMillis)
}

// RecordRouting records one routing decision, including whether the claim was
// optimized, as a single update. Snapshots never see one without the other.
func (m *Metrics) RecordRouting(t RouteType, elapsedMillis float64, optimized bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(t, elapsedMillis)
	if optimized {
		m.stats.AIOptimizations++
	}
}

func (m *Metrics) record(t RouteType, elapsedMillis float64) {
	m.stats.TotalClaims++
	m.stats.RoutedClaims[t]++
	n := float64(m.stats.RoutedClaims[t])
	if n == 1 {
		m.stats.AverageProcessingTime[t] = elapsedMillis
		return
	}
	prev := m.stats.AverageProcessingTime[t]
	m.stats.AverageProcessingTime[t] = (prev*(n-1) + elapsedMillis) / n
}

// RecordOptimization counts one optimized claim.
func (m *Metrics) RecordOptimization() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.AIOptimizations++
}

// Snapshot returns a copy of the current statistics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := MetricsSnapshot{
		TotalClaims:           m.stats.TotalClaims,
		RoutedClaims:          make(map[RouteType]int64, len(m.stats.RoutedClaims)),
		AverageProcessingTime: make(map[RouteType]float64, len(m.stats.AverageProcessingTime)),
		ApprovalRates:         make(map[RouteType]float64, len(m.stats.ApprovalRates)),
		AIOptimizations:       m.stats.AIOptimizations,
	}
	for k, v := range m.stats.RoutedClaims {
		out.RoutedClaims[k] = v
	}
	for k, v := range m.stats.AverageProcessingTime {
		out.AverageProcessingTime[k] = v
	}
	for k, v := range m.stats.ApprovalRates {
		out.ApprovalRates[k] = v
	}
	return out
}

// Reset zeroes all statistics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats = emptySnapshot()
}

func emptySnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RoutedClaims:          make(map[RouteType]int64),
		AverageProcessingTime: make(map[RouteType]float64),
		ApprovalRates:         make(map[RouteType]float64),
	}
}
