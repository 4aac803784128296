package policy

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const extractionSystemPrompt = `You are a policy data extraction specialist. You convert underwriting summaries into structured policy data. Respond with a single JSON object and nothing else: no markdown fences, no commentary.`

// extractionPrompt asks for the exact Data JSON shape.
func extractionPrompt(summary string) string {
	return fmt.Sprintf(`Extract structured policy data from the underwriting summary below. Respond with exactly this JSON shape:

{
  "policy_number": "",
  "insured_name": "",
  "policy_type": "",
  "coverage_amount": "",
  "annual_premium": "",
  "effective_date": "",
  "termination_date": "",
  "underwriting_decision": "",
  "underwriting_summary": {
    "medical_status": "",
    "financial_status": "",
    "driving_status": "",
    "compliance_status": "",
    "final_decision": "",
    "conditions": ""
  }
}

EXTRACTION RULES:
- Extract actual values from the summary; use "Not Specified" when data is absent
- Preserve currency values as written (e.g. 500000 USD)
- Extract the final underwriting decision (Approved / Declined / Review)
- Generate the policy number in the format POL-USA-%s-XXXX where XXXX is 4 random digits
- Policy effective date is today; termination date is the effective date plus the policy term

UNDERWRITING SUMMARY:
%s`, time.Now().UTC().Format("20060102"), summary)
}

var policyTemplate = template.Must(template.New("policy").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Policy {{.Data.PolicyNumber}}</title>
</head>
<body class="policy-document">
<h1>Life Insurance Policy</h1>

<table class="policy-table">
<thead>
<tr><th>Field</th><th>Value</th></tr>
</thead>
<tbody>
<tr><td>Policy Number</td><td>{{.Data.PolicyNumber}}</td></tr>
<tr><td>Insured Name</td><td>{{.Data.InsuredName}}</td></tr>
<tr><td>Policy Type</td><td>{{.Data.PolicyType}}</td></tr>
<tr><td>Coverage Amount</td><td>{{.Data.CoverageAmount}}</td></tr>
<tr><td>Annual Premium</td><td>{{.Data.AnnualPremium}}</td></tr>
<tr><td>Effective Date</td><td>{{.Data.EffectiveDate}}</td></tr>
<tr><td>Termination Date</td><td>{{.Data.TerminationDate}}</td></tr>
<tr><td>Underwriting Decision</td><td>{{.Data.UnderwritingDecision}}</td></tr>
<tr><td>Session</td><td>{{.SessionID}}</td></tr>
<tr><td>Generated</td><td>{{.Generated}}</td></tr>
</tbody>
</table>

<h2>Underwriting Summary</h2>
<table class="policy-table">
<tbody>
<tr><td>Medical</td><td>{{.Data.Underwriting.MedicalStatus}}</td></tr>
<tr><td>Financial</td><td>{{.Data.Underwriting.FinancialStatus}}</td></tr>
<tr><td>Driving</td><td>{{.Data.Underwriting.DrivingStatus}}</td></tr>
<tr><td>Compliance</td><td>{{.Data.Underwriting.ComplianceStatus}}</td></tr>
<tr><td>Final Decision</td><td>{{.Data.Underwriting.FinalDecision}}</td></tr>
<tr><td>Conditions</td><td>{{.Data.Underwriting.Conditions}}</td></tr>
</tbody>
</table>

<h2>Full Underwriting Report</h2>
<div class="underwriting-report">
{{.Summary}}
</div>
</body>
</html>
`))

type renderContext struct {
	SessionID string
	Generated string
	Data      Data
	Summary   template.HTML
}

// render produces the policy artifact. The final summary is emitted as-is:
// the terminal stage already produces table-based HTML.
func render(sessionID string, data Data, summary string) ([]byte, error) {
	var buf bytes.Buffer

	err := policyTemplate.Execute(&buf, renderContext{
		SessionID: sessionID,
		Generated: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
		Summary:   template.HTML(summary),
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
