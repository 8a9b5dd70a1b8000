package router

import (
	"strings"

	"github.com/zen-systems/claimroute/pkg/claim"
)

// Codes in these families (implants, oral surgery, periodontics,
// endodontics) raise claim complexity.
var complexCodePrefixes = []string{"D6", "D7", "D4", "D3"}

var narrativeRequiredCodes = map[string]struct{}{
	"D4341": {}, // scaling and root planing, 4+ teeth
	"D4342": {}, // scaling and root planing, 1-3 teeth
	"D4910": {},
	"D4260": {},
	"D6010": {},
	"D7210": {},
	"D7240": {},
	"D2950": {},
}

// Lower-case payer identifiers.
var narrativeRequiredPayers = map[string]struct{}{
	"delta_dental": {},
	"metlife":      {},
	"cigna":        {},
	"guardian":     {},
}

const (
	narrativeValueThreshold = 0.7
	valueFeeCeiling         = 2000.0
)

// Analyze derives the characteristic scores of a claim.
// It fails with a claim.ValidationError when the claim has no procedures.
func Analyze(c *claim.Claim) (Characteristics, error) {
	if err := claim.Validate(c); err != nil {
		return Characteristics{}, err
	}

	value := valueScore(c)
	return Characteristics{
		Complexity:        complexityScore(c),
		Urgency:           urgencyScore(c),
		Value:             value,
		Risk:              riskScore(c),
		Payer:             c.PayerID,
		NarrativeRequired: narrativeRequired(c, value),
		DentalCodes:       c.Codes(),
	}, nil
}

// NarrativeRequired reports whether the claim needs a clinical narrative.
// The claim must already be valid.
func NarrativeRequired(c *claim.Claim) bool {
	return narrativeRequired(c, valueScore(c))
}

func complexityScore(c *claim.Claim) float64 {
	count := float64(len(c.Procedures))

	score := minFloat(count/10, 0.3)

	complexCodes := 0
	for _, p := range c.Procedures {
		if hasAnyPrefix(p.Code, complexCodePrefixes) {
			complexCodes++
		}
	}
	score += float64(complexCodes) / count * 0.3

	if c.Attachments != nil {
		score += minFloat(float64(len(c.Attachments))/5, 0.2)
	}
	if c.PatientHistory != nil {
		score += minFloat(float64(len(c.PatientHistory.MedicalConditions))/3, 0.2)
	}
	return clamp01(score)
}

func urgencyScore(c *claim.Claim) float64 {
	var score float64
	if c.Emergency {
		score += 0.5
	}
	score += recencyBonus(c)
	if c.PatientStatus == claim.PatientNew {
		score += 0.1
	}
	if c.PainIndicated {
		score += 0.2
	}
	return clamp01(score)
}

// recencyBonus rewards claims submitted soon after the date of service.
func recencyBonus(c *claim.Claim) float64 {
	if c.ServiceDate == nil || c.SubmissionDate == nil {
		return 0
	}
	days := c.SubmissionDate.Sub(*c.ServiceDate).Hours() / 24
	switch {
	case days <= 1:
		return 0.3
	case days <= 5:
		return 0.2
	case days <= 10:
		return 0.1
	default:
		return 0
	}
}

func valueScore(c *claim.Claim) float64 {
	return minFloat(c.TotalFee()/valueFeeCeiling, 1)
}

func riskScore(c *claim.Claim) float64 {
	score := minFloat(float64(c.DeniedPriorClaims())/5, 0.3)
	score += minFloat(float64(c.MedicalConditionCount())/5, 0.3)
	if c.CoverageVerification != "" && c.CoverageVerification != "verified" {
		score += 0.2
	}
	if c.PatientPaymentHistory == "delinquent" {
		score += 0.2
	}
	return clamp01(score)
}

func narrativeRequired(c *claim.Claim, value float64) bool {
	for _, p := range c.Procedures {
		if _, ok := narrativeRequiredCodes[p.Code]; ok {
			return true
		}
	}
	if value > narrativeValueThreshold {
		return true
	}
	_, ok := narrativeRequiredPayers[strings.ToLower(c.PayerID)]
	return ok
}

func hasAnyPrefix(code string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

func clamp01(x float64) float64 {
	return maxFloat(0, minFloat(1, x))
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
