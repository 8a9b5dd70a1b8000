package router

import (
	"strings"

	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/config"
)

// PlaceholderNarrative marks a claim whose narrative still has to be written.
const PlaceholderNarrative = "[NARRATIVE REQUIRED] Document medical necessity for the submitted procedures."

var recommendedDocumentation = []string{
	"pre-operative radiographs",
	"periodontal charting",
	"intraoral photographs",
	"clinical notes",
}

// Optimize returns a copy of the claim with recommended additions and
// whether any optimization applied. Existing fields are never removed or
// overwritten, and the input claim is left untouched.
func Optimize(c *claim.Claim, route Route, level config.OptimizationLevel) (*claim.Claim, bool) {
	out := c.Clone()
	applied := false

	if NarrativeRequired(c) && strings.TrimSpace(c.Narrative) == "" {
		out.Narrative = PlaceholderNarrative
		applied = true
	}

	if route.Type == RouteComplex || route.Type == RouteHighValue {
		out.RecommendedDocumentation = appendMissing(out.RecommendedDocumentation, recommendedDocumentation)
		applied = true
	}

	// Reserved for coding optimization; aggressive mode only flags the claim.
	if level == config.OptimizationAggressive {
		applied = true
	}

	return out, applied
}

// HasPlaceholderNarrative reports whether the claim still carries the optimizer's placeholder.
func HasPlaceholderNarrative(c *claim.Claim) bool {
	return c != nil && c.Narrative == PlaceholderNarrative
}

func appendMissing(dst, items []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, d := range dst {
		seen[d] = struct{}{}
	}
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		dst = append(dst, item)
	}
	return dst
}
