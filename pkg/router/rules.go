package router

import (
	"fmt"

	"github.com/zen-systems/claimroute/pkg/claim"
)

const (
	urgencyThreshold    = 0.7
	complexityThreshold = 0.7
	valueThreshold      = 0.7

	preauthConfidence = 0.85
)

// routeRule is one row of the route table. Every per-route constant lives
// here so selection, instructions and estimates cannot drift apart.
type routeRule struct {
	routeType  RouteType
	processor  string
	priority   Priority
	validation ValidationLevel
	// baseHours overrides the priority-derived base when non-zero.
	baseHours int
	handling  []string
	summary   string

	matches    func(c *claim.Claim, ch Characteristics) bool
	confidence func(ch Characteristics) float64
}

// routeTable is ordered by decision priority; the first matching rule wins.
var routeTable = []routeRule{
	{
		routeType:  RouteEmergency,
		processor:  "expeditedProcessor",
		priority:   PriorityHigh,
		validation: ValidationMinimal,
		baseHours:  4,
		handling:   []string{"Expedite adjudication", "Verify emergency documentation", "Notify on-call reviewer"},
		summary:    "urgency above threshold",
		matches: func(_ *claim.Claim, ch Characteristics) bool {
			return ch.Urgency > urgencyThreshold
		},
		confidence: func(ch Characteristics) float64 { return ch.Urgency },
	},
	{
		routeType:  RouteComplex,
		processor:  "specialistProcessor",
		priority:   PriorityNormal,
		validation: ValidationEnhanced,
		baseHours:  48,
		handling:   []string{"Assign specialist reviewer", "Cross-check procedure combinations", "Review attached documentation"},
		summary:    "complexity above threshold",
		matches: func(_ *claim.Claim, ch Characteristics) bool {
			return ch.Complexity > complexityThreshold
		},
		confidence: func(ch Characteristics) float64 { return ch.Complexity },
	},
	{
		routeType:  RouteHighValue,
		processor:  "premiumProcessor",
		priority:   PriorityHigh,
		validation: ValidationComprehensive,
		baseHours:  36,
		handling:   []string{"Senior reviewer sign-off", "Verify fee schedule", "Retain full audit trail"},
		summary:    "value above threshold",
		matches: func(_ *claim.Claim, ch Characteristics) bool {
			return ch.Value > valueThreshold
		},
		confidence: func(ch Characteristics) float64 { return ch.Value },
	},
	{
		routeType:  RoutePreauthorization,
		processor:  "preauthProcessor",
		priority:   PriorityNormal,
		validation: ValidationStrict,
		baseHours:  72,
		handling:   []string{"Submit preauthorization request", "Hold claim until authorization is received"},
		summary:    "preauthorization required",
		matches: func(c *claim.Claim, _ Characteristics) bool {
			return c.RequiresPreauth
		},
		confidence: func(Characteristics) float64 { return preauthConfidence },
	},
	{
		routeType:  RouteDefault,
		processor:  "standardProcessor",
		priority:   PriorityNormal,
		validation: ValidationBasic,
		handling:   []string{"Standard processing queue"},
		summary:    "no elevated characteristics",
		matches:    func(*claim.Claim, Characteristics) bool { return true },
		confidence: func(ch Characteristics) float64 {
			return 1 - maxFloat(ch.Urgency, maxFloat(ch.Complexity, ch.Value))
		},
	},
}

// Select picks the route for a claim from its characteristics.
func Select(c *claim.Claim, ch Characteristics) Route {
	rule := matchRule(c, ch)
	return Route{
		Type:       rule.routeType,
		Processor:  rule.processor,
		Priority:   rule.priority,
		Validation: rule.validation,
		Confidence: rule.confidence(ch),
		Reason: fmt.Sprintf("%s (urgency=%.2f complexity=%.2f value=%.2f)",
			rule.summary, ch.Urgency, ch.Complexity, ch.Value),
	}
}

func matchRule(c *claim.Claim, ch Characteristics) routeRule {
	for _, rule := range routeTable {
		if rule.matches(c, ch) {
			return rule
		}
	}
	// The default row always matches.
	return routeTable[len(routeTable)-1]
}

func lookupRule(t RouteType) (routeRule, bool) {
	for _, rule := range routeTable {
		if rule.routeType == t {
			return rule, true
		}
	}
	return routeRule{}, false
}

// BuildInstructions returns the handling instructions for a route.
func BuildInstructions(route Route) Instructions {
	var handling []string
	if rule, ok := lookupRule(route.Type); ok {
		handling = append(handling, rule.handling...)
	}
	return Instructions{
		ProcessorID:     route.Processor,
		Priority:        route.Priority,
		ValidationLevel: route.Validation,
		SpecialHandling: handling,
	}
}

// RouteInfo describes a routing rule.
type RouteInfo struct {
	Type            RouteType
	Processor       string
	Priority        Priority
	Validation      ValidationLevel
	BaseHours       int
	SpecialHandling []string
	Condition       string
}

// Routes returns the route catalogue in decision order.
func Routes() []RouteInfo {
	routes := make([]RouteInfo, 0, len(routeTable))
	for _, rule := range routeTable {
		routes = append(routes, RouteInfo{
			Type:            rule.routeType,
			Processor:       rule.processor,
			Priority:        rule.priority,
			Validation:      rule.validation,
			BaseHours:       baseHours(rule.priority, rule.routeType),
			SpecialHandling: append([]string(nil), rule.handling...),
			Condition:       rule.summary,
		})
	}
	return routes
}
