package router

import (
	"time"

	"github.com/zen-systems/claimroute/pkg/claim"
)

// RouteType is the processing pathway assigned to a claim.
type RouteType string

const (
	RouteDefault          RouteType = "DEFAULT"
	RouteEmergency        RouteType = "EMERGENCY"
	RouteComplex          RouteType = "COMPLEX"
	RouteHighValue        RouteType = "HIGH_VALUE"
	RoutePreauthorization RouteType = "PREAUTHORIZATION"
)

// Priority is the queue priority of a route.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ValidationLevel is how strictly a processor validates a claim.
type ValidationLevel string

const (
	ValidationMinimal       ValidationLevel = "minimal"
	ValidationBasic         ValidationLevel = "basic"
	ValidationEnhanced      ValidationLevel = "enhanced"
	ValidationComprehensive ValidationLevel = "comprehensive"
	ValidationStrict        ValidationLevel = "strict"
)

// Characteristics are the normalized scores derived from a claim.
// Complexity, Urgency, Value and Risk are always within [0,1].
type Characteristics struct {
	Complexity        float64  `json:"complexity"`
	Urgency           float64  `json:"urgency"`
	Value             float64  `json:"value"`
	Risk              float64  `json:"risk"`
	Payer             string   `json:"payer,omitempty"`
	NarrativeRequired bool     `json:"narrative_required"`
	DentalCodes       []string `json:"dental_codes"`
}

// Route captures the routing decision for one claim.
type Route struct {
	Type       RouteType       `json:"type"`
	Processor  string          `json:"processor"`
	Priority   Priority        `json:"priority"`
	Validation ValidationLevel `json:"validation"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason"`
}

// Instructions tell the downstream processor how to handle the claim.
type Instructions struct {
	ProcessorID     string          `json:"processor_id"`
	Priority        Priority        `json:"priority"`
	ValidationLevel ValidationLevel `json:"validation_level"`
	SpecialHandling []string        `json:"special_handling"`
}

// Completion is the estimated time to finish processing.
type Completion struct {
	Hours     int       `json:"hours"`
	Timestamp time.Time `json:"timestamp"`
}

// RoutingResult bundles everything produced for one routed claim.
type RoutingResult struct {
	ID                  string          `json:"id"`
	OriginalClaim       *claim.Claim    `json:"original_claim"`
	OptimizedClaim      *claim.Claim    `json:"optimized_claim"`
	OptimizationApplied bool            `json:"optimization_applied"`
	Characteristics     Characteristics `json:"characteristics"`
	Route               Route           `json:"route"`
	Instructions        Instructions    `json:"instructions"`
	EstimatedCompletion Completion      `json:"estimated_completion"`
	RoutedAt            time.Time       `json:"routed_at"`
}
