// Package router scores billing claims and assigns each one a processing route.
//
// Analyze, Select, Optimize and Estimate are pure and safe to call from any
// goroutine. Metrics is the only shared state; a Router funnels every update
// through it.
package router

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/config"
)

// Router routes claims and keeps aggregate statistics about them.
type Router struct {
	config  config.EngineConfig
	metrics *Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMetrics shares an existing aggregator, e.g. between routers serving one process.
func WithMetrics(m *Metrics) RouterOption {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithLogger sets the logger used for per-claim debug events.
func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger.With().Str("component", "router").Logger()
	}
}

// WithClock overrides the clock used for completion timestamps.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a router. An unrecognized optimization level fails here,
// before any claim is routed.
func New(cfg config.EngineConfig, opts ...RouterOption) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Router{
		config:  cfg,
		metrics: NewMetrics(),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RouteClaim scores, routes, optionally optimizes and estimates one claim.
// Invalid claims return a claim.ValidationError and leave the metrics untouched.
func (r *Router) RouteClaim(c *claim.Claim) (*RoutingResult, error) {
	start := time.Now()

	characteristics, err := Analyze(c)
	if err != nil {
		return nil, err
	}

	route := Select(c, characteristics)

	optimized, applied := c, false
	if r.config.AdvancedOptimization {
		optimized, applied = Optimize(c, route, r.config.OptimizationLevel)
	}

	routedAt := r.now()
	completion, err := Estimate(route, optimized, routedAt)
	if err != nil {
		return nil, err
	}

	elapsed := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
	r.metrics.RecordRouting(route.Type, elapsed, applied)

	r.logger.Debug().
		Str("claim_id", c.ID).
		Str("route", string(route.Type)).
		Float64("confidence", route.Confidence).
		Bool("optimized", applied).
		Float64("elapsed_ms", elapsed).
		Msg("claim routed")

	return &RoutingResult{
		ID:                  uuid.NewString(),
		OriginalClaim:       c,
		OptimizedClaim:      optimized,
		OptimizationApplied: applied,
		Characteristics:     characteristics,
		Route:               route,
		Instructions:        BuildInstructions(route),
		EstimatedCompletion: completion,
		RoutedAt:            routedAt,
	}, nil
}

// Metrics returns a snapshot of the routing statistics.
func (r *Router) Metrics() MetricsSnapshot {
	return r.metrics.Snapshot()
}

// ResetMetrics clears the routing statistics.
func (r *Router) ResetMetrics() {
	r.metrics.Reset()
}

// Config returns the engine configuration the router was built with.
func (r *Router) Config() config.EngineConfig {
	return r.config
}
