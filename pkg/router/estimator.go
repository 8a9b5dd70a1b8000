package router

import (
	"math"
	"time"

	"github.com/zen-systems/claimroute/pkg/claim"
)

const (
	highPriorityHours   = 8
	normalPriorityHours = 24
)

// Estimate predicts how long processing takes on the given route.
// Complexity is recomputed from the claim, which may be the optimized copy.
func Estimate(route Route, c *claim.Claim, now time.Time) (Completion, error) {
	if err := claim.Validate(c); err != nil {
		return Completion{}, err
	}

	base := baseHours(route.Priority, route.Type)
	hours := int(math.Round(float64(base) * (1 + complexityScore(c))))

	return Completion{
		Hours:     hours,
		Timestamp: now.Add(time.Duration(hours) * time.Hour),
	}, nil
}

func baseHours(priority Priority, t RouteType) int {
	hours := normalPriorityHours
	if priority == PriorityHigh {
		hours = highPriorityHours
	}
	if rule, ok := lookupRule(t); ok && rule.baseHours > 0 {
		hours = rule.baseHours
	}
	return hours
}
