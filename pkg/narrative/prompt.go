package narrative

import (
	"fmt"
	"strings"

	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/router"
)

// BuildPrompt asks for a medical-necessity narrative grounded in the claim's
// procedures and the scores that drove its route.
func BuildPrompt(c *claim.Claim, ch router.Characteristics) string {
	var sb strings.Builder

	sb.WriteString("You are a dental billing specialist. Write the clinical narrative for this claim.\n")
	sb.WriteString("State the medical necessity for each procedure in plain clinical language.\n")
	sb.WriteString("Return ONLY the narrative text, at most three short paragraphs. Do not invent findings.\n\n")

	sb.WriteString("Procedures:\n")
	for _, p := range c.Procedures {
		if p.ToothNumber != "" {
			sb.WriteString(fmt.Sprintf("- %s (tooth %s, fee %.2f)\n", p.Code, p.ToothNumber, p.Fee))
		} else {
			sb.WriteString(fmt.Sprintf("- %s (fee %.2f)\n", p.Code, p.Fee))
		}
	}

	if ch.Payer != "" {
		sb.WriteString(fmt.Sprintf("\nPayer: %s\n", ch.Payer))
	}
	if c.Emergency || c.PainIndicated {
		sb.WriteString("\nPresentation:")
		if c.Emergency {
			sb.WriteString(" emergency visit")
		}
		if c.PainIndicated {
			sb.WriteString(" patient reports pain")
		}
		sb.WriteString("\n")
	}
	if n := c.MedicalConditionCount(); n > 0 {
		sb.WriteString(fmt.Sprintf("Medical history: %s\n", strings.Join(c.PatientHistory.MedicalConditions, ", ")))
	}
	if len(c.Attachments) > 0 {
		sb.WriteString(fmt.Sprintf("Attachments on file: %s\n", strings.Join(c.Attachments, ", ")))
	}

	sb.WriteString(fmt.Sprintf("\nScores: complexity=%.2f urgency=%.2f value=%.2f risk=%.2f\n",
		ch.Complexity, ch.Urgency, ch.Value, ch.Risk))

	return sb.String()
}
