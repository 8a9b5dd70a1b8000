package router

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/zen-systems/claimroute/pkg/claim"
)

const tolerance = 1e-9

func newClaim(procs ...claim.Procedure) *claim.Claim {
	return &claim.Claim{ID: "clm-1", Procedures: procs}
}

func proc(code string, fee float64) claim.Procedure {
	return claim.Procedure{Code: code, Fee: fee}
}

func day(offset int) *time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &t
}

func assertScore(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Fatalf("%s = %.6f, want %.6f", name, got, want)
	}
}

func TestAnalyzeSingleCrown(t *testing.T) {
	ch, err := Analyze(newClaim(proc("D2740", 1200)))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	assertScore(t, "value", ch.Value, 0.6)
	assertScore(t, "complexity", ch.Complexity, 0.1)
	assertScore(t, "urgency", ch.Urgency, 0)
	assertScore(t, "risk", ch.Risk, 0)
	if ch.NarrativeRequired {
		t.Fatalf("expected no narrative requirement")
	}
	if len(ch.DentalCodes) != 1 || ch.DentalCodes[0] != "D2740" {
		t.Fatalf("unexpected dental codes: %v", ch.DentalCodes)
	}
}

func TestAnalyzeRejectsMissingProcedures(t *testing.T) {
	tests := []struct {
		name  string
		claim *claim.Claim
	}{
		{name: "nil claim", claim: nil},
		{name: "nil procedures", claim: &claim.Claim{ID: "x"}},
		{name: "empty procedures", claim: &claim.Claim{ID: "x", Procedures: []claim.Procedure{}}},
		{name: "negative fee", claim: newClaim(proc("D1110", -5))},
		{name: "blank code", claim: newClaim(proc(" ", 10))},
		{name: "nan fee", claim: newClaim(proc("D1110", math.NaN()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.claim)
			if !errors.Is(err, claim.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAnalyzeComplexity(t *testing.T) {
	c := newClaim(proc("D7210", 300), proc("D4341", 250), proc("D2740", 900), proc("D3310", 700))
	c.Attachments = []string{"xray-1", "xray-2", "perio-chart"}
	c.PatientHistory = &claim.PatientHistory{MedicalConditions: []string{"diabetes", "hypertension"}}

	ch, err := Analyze(c)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	// 0.3 (count cap) + 3/4*0.3 + 0.2 (attachments cap) + 0.2 (conditions cap)
	assertScore(t, "complexity", ch.Complexity, 0.925)
}

func TestAnalyzeComplexityClamps(t *testing.T) {
	var procs []claim.Procedure
	for i := 0; i < 12; i++ {
		procs = append(procs, proc(fmt.Sprintf("D60%02d", i), 10))
	}
	c := newClaim(procs...)
	c.Attachments = make([]string, 10)
	c.PatientHistory = &claim.PatientHistory{MedicalConditions: make([]string, 6)}

	ch, err := Analyze(c)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	assertScore(t, "complexity", ch.Complexity, 1)
}

func TestAnalyzeUrgency(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *claim.Claim)
		want   float64
	}{
		{"nothing", func(*claim.Claim) {}, 0},
		{"emergency", func(c *claim.Claim) { c.Emergency = true }, 0.5},
		{"same day", func(c *claim.Claim) { c.ServiceDate, c.SubmissionDate = day(0), day(1) }, 0.3},
		{"three days", func(c *claim.Claim) { c.ServiceDate, c.SubmissionDate = day(0), day(3) }, 0.2},
		{"eight days", func(c *claim.Claim) { c.ServiceDate, c.SubmissionDate = day(0), day(8) }, 0.1},
		{"a month", func(c *claim.Claim) { c.ServiceDate, c.SubmissionDate = day(0), day(30) }, 0},
		{"only service date", func(c *claim.Claim) { c.ServiceDate = day(0) }, 0},
		{"new patient", func(c *claim.Claim) { c.PatientStatus = claim.PatientNew }, 0.1},
		{"existing patient", func(c *claim.Claim) { c.PatientStatus = claim.PatientExisting }, 0},
		{"pain", func(c *claim.Claim) { c.PainIndicated = true }, 0.2},
		{"emergency with pain", func(c *claim.Claim) { c.Emergency, c.PainIndicated = true, true }, 0.7},
		{"everything clamps", func(c *claim.Claim) {
			c.Emergency, c.PainIndicated, c.PatientStatus = true, true, claim.PatientNew
			c.ServiceDate, c.SubmissionDate = day(0), day(0)
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClaim(proc("D1110", 100))
			tt.mutate(c)
			ch, err := Analyze(c)
			if err != nil {
				t.Fatalf("analyze: %v", err)
			}
			assertScore(t, "urgency", ch.Urgency, tt.want)
		})
	}
}

func TestAnalyzeValueCaps(t *testing.T) {
	ch, err := Analyze(newClaim(proc("D6010", 2500), proc("D6057", 1500)))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	assertScore(t, "value", ch.Value, 1)
}

func TestAnalyzeRisk(t *testing.T) {
	c := newClaim(proc("D1110", 100))
	c.PreviousClaims = []claim.PreviousClaim{{Status: "denied"}, {Status: "Denied"}, {Status: "paid"}}
	c.PatientHistory = &claim.PatientHistory{MedicalConditions: []string{"asthma"}}
	c.CoverageVerification = "pending"
	c.PatientPaymentHistory = "delinquent"

	ch, err := Analyze(c)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// min(2/5, 0.3) + 1/5 + 0.2 + 0.2
	assertScore(t, "risk", ch.Risk, 0.9)

	c.CoverageVerification = "verified"
	c.PatientPaymentHistory = "current"
	ch, _ = Analyze(c)
	assertScore(t, "risk", ch.Risk, 0.5)
}

func TestNarrativeRequired(t *testing.T) {
	tests := []struct {
		name  string
		claim *claim.Claim
		want  bool
	}{
		{"plain cleaning", newClaim(proc("D1110", 120)), false},
		{"scaling and root planing", newClaim(proc("D1110", 120), proc("D4341", 220)), true},
		{"high value", newClaim(proc("D2740", 1500)), true},
		{"value at threshold", newClaim(proc("D2740", 1400)), false},
		{"payer case-insensitive", &claim.Claim{PayerID: "MetLife", Procedures: []claim.Procedure{proc("D1110", 120)}}, true},
		{"other payer", &claim.Claim{PayerID: "aetna", Procedures: []claim.Procedure{proc("D1110", 120)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := Analyze(tt.claim)
			if err != nil {
				t.Fatalf("analyze: %v", err)
			}
			if ch.NarrativeRequired != tt.want {
				t.Fatalf("NarrativeRequired = %v, want %v", ch.NarrativeRequired, tt.want)
			}
			if NarrativeRequired(tt.claim) != tt.want {
				t.Fatalf("NarrativeRequired() disagrees with Analyze")
			}
		})
	}
}

func TestAnalyzeScoresStayInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	codes := []string{"D0120", "D1110", "D2740", "D3310", "D4341", "D6010", "D7210", "D9110"}

	for i := 0; i < 500; i++ {
		c := randomClaim(rng, codes)
		ch, err := Analyze(c)
		if err != nil {
			t.Fatalf("analyze claim %d: %v", i, err)
		}
		for name, v := range map[string]float64{
			"complexity": ch.Complexity,
			"urgency":    ch.Urgency,
			"value":      ch.Value,
			"risk":       ch.Risk,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("claim %d: %s = %f outside [0,1]", i, name, v)
			}
		}
	}
}

func randomClaim(rng *rand.Rand, codes []string) *claim.Claim {
	n := 1 + rng.Intn(15)
	c := &claim.Claim{ID: fmt.Sprintf("rand-%d", rng.Int())}
	for j := 0; j < n; j++ {
		c.Procedures = append(c.Procedures, proc(codes[rng.Intn(len(codes))], rng.Float64()*1500))
	}
	c.Emergency = rng.Intn(2) == 0
	c.PainIndicated = rng.Intn(2) == 0
	c.RequiresPreauth = rng.Intn(4) == 0
	if rng.Intn(2) == 0 {
		c.PatientStatus = claim.PatientNew
	}
	if rng.Intn(2) == 0 {
		c.ServiceDate, c.SubmissionDate = day(0), day(rng.Intn(20)-2)
	}
	if rng.Intn(2) == 0 {
		c.Attachments = make([]string, rng.Intn(8))
	}
	if rng.Intn(2) == 0 {
		c.PatientHistory = &claim.PatientHistory{MedicalConditions: make([]string, rng.Intn(8))}
	}
	for k := rng.Intn(8); k > 0; k-- {
		c.PreviousClaims = append(c.PreviousClaims, claim.PreviousClaim{Status: "denied"})
	}
	if rng.Intn(2) == 0 {
		c.CoverageVerification = "pending"
	}
	if rng.Intn(2) == 0 {
		c.PatientPaymentHistory = "delinquent"
	}
	return c
}
