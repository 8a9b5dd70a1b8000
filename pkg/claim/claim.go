// Package claim defines the billing claim model consumed by the router.
package claim

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PatientStatus classifies the patient relationship with the practice.
type PatientStatus string

const (
	PatientNew      PatientStatus = "new"
	PatientExisting PatientStatus = "existing"
)

// Procedure is a single billable line item.
type Procedure struct {
	Code        string  `json:"code" yaml:"code"`
	ToothNumber string  `json:"tooth_number,omitempty" yaml:"tooth_number,omitempty"`
	Fee         float64 `json:"fee" yaml:"fee"`
}

// PreviousClaim is the outcome of an earlier claim for the same patient.
type PreviousClaim struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Status string `json:"status" yaml:"status"`
}

// Denied reports whether the prior claim was denied.
func (p PreviousClaim) Denied() bool {
	return strings.EqualFold(strings.TrimSpace(p.Status), "denied")
}

// PatientHistory carries the medical background relevant to adjudication.
type PatientHistory struct {
	MedicalConditions []string `json:"medical_conditions,omitempty" yaml:"medical_conditions,omitempty"`
}

// Claim is a billing submission bundling one or more procedures.
type Claim struct {
	ID                    string          `json:"id" yaml:"id"`
	Procedures            []Procedure     `json:"procedures" yaml:"procedures"`
	PayerID               string          `json:"payer_id,omitempty" yaml:"payer_id,omitempty"`
	Emergency             bool            `json:"emergency,omitempty" yaml:"emergency,omitempty"`
	ServiceDate           *time.Time      `json:"service_date,omitempty" yaml:"service_date,omitempty"`
	SubmissionDate        *time.Time      `json:"submission_date,omitempty" yaml:"submission_date,omitempty"`
	PatientStatus         PatientStatus   `json:"patient_status,omitempty" yaml:"patient_status,omitempty"`
	PainIndicated         bool            `json:"pain_indicated,omitempty" yaml:"pain_indicated,omitempty"`
	PreviousClaims        []PreviousClaim `json:"previous_claims,omitempty" yaml:"previous_claims,omitempty"`
	PatientHistory        *PatientHistory `json:"patient_history,omitempty" yaml:"patient_history,omitempty"`
	CoverageVerification  string          `json:"coverage_verification,omitempty" yaml:"coverage_verification,omitempty"`
	PatientPaymentHistory string          `json:"patient_payment_history,omitempty" yaml:"patient_payment_history,omitempty"`
	Attachments           []string        `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Narrative             string          `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	RequiresPreauth       bool            `json:"requires_preauth,omitempty" yaml:"requires_preauth,omitempty"`

	// Set by the optimizer on the routed copy only.
	RecommendedDocumentation []string `json:"recommended_documentation,omitempty" yaml:"recommended_documentation,omitempty"`
}

// Validate checks that the claim can be scored.
func Validate(c *Claim) error {
	if c == nil {
		return &ValidationError{Field: "claim", Reason: "claim is required"}
	}
	if len(c.Procedures) == 0 {
		return &ValidationError{Field: "procedures", Reason: "at least one procedure is required"}
	}
	for i, p := range c.Procedures {
		field := fmt.Sprintf("procedures[%d]", i)
		if strings.TrimSpace(p.Code) == "" {
			return &ValidationError{Field: field + ".code", Reason: "code is required"}
		}
		if math.IsNaN(p.Fee) || math.IsInf(p.Fee, 0) {
			return &ValidationError{Field: field + ".fee", Reason: "fee must be a finite number"}
		}
		if p.Fee < 0 {
			return &ValidationError{Field: field + ".fee", Reason: fmt.Sprintf("fee must be non-negative, got %.2f", p.Fee)}
		}
	}
	return nil
}

// Validate checks that the claim can be scored.
func (c *Claim) Validate() error {
	return Validate(c)
}

// Clone returns a shallow copy with its own top-level slices, so appending
// to the copy never writes into the caller's backing arrays.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	out := *c
	out.Procedures = append([]Procedure(nil), c.Procedures...)
	out.PreviousClaims = append([]PreviousClaim(nil), c.PreviousClaims...)
	out.Attachments = append([]string(nil), c.Attachments...)
	out.RecommendedDocumentation = append([]string(nil), c.RecommendedDocumentation...)
	return &out
}

// TotalFee sums the procedure fees.
func (c *Claim) TotalFee() float64 {
	var total float64
	for _, p := range c.Procedures {
		total += p.Fee
	}
	return total
}

// Codes returns the procedure codes in claim order.
func (c *Claim) Codes() []string {
	codes := make([]string, 0, len(c.Procedures))
	for _, p := range c.Procedures {
		codes = append(codes, p.Code)
	}
	return codes
}

// MedicalConditionCount returns the number of recorded medical conditions.
func (c *Claim) MedicalConditionCount() int {
	if c.PatientHistory == nil {
		return 0
	}
	return len(c.PatientHistory.MedicalConditions)
}

// DeniedPriorClaims counts previous claims with a denied status.
func (c *Claim) DeniedPriorClaims() int {
	n := 0
	for _, p := range c.PreviousClaims {
		if p.Denied() {
			n++
		}
	}
	return n
}
