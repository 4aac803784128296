package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// plannerInstructions direct the tool-calling model through the full stage
// sequence. Findings never halt the plan; adverse results belong in the
// final summary.
const plannerInstructions = `You are the chief underwriting orchestrator coordinating a comprehensive life insurance underwriting analysis using 8 specialist analysis tools.

EXECUTION REQUIREMENTS:
1. Call every analysis tool exactly once, in this order: data_intake_tool, document_verification_tool, medical_risk_assessment_tool, financial_analysis_tool, driving_analysis_tool, compliance_analysis_tool, lifestyle_behavioral_analysis_tool, summary_generation_tool.
2. Never stop early. Fraud indicators, compliance findings, or adverse results from any specialist must not halt the process; record them and continue to the next tool.
3. Pass the session identifier to every tool.
4. After summary_generation_tool completes, respond with only the final underwriting summary it produced. Do not add commentary.`

// plannerInput builds the user message that seeds a planned run.
func plannerInput(st *State) string {
	return fmt.Sprintf(
		"Process underwriting session %s. %d documents have been ingested and extracted. Run the complete specialist analysis sequence and return the final summary.",
		st.SessionID(), st.DocumentCount(),
	)
}

// userPrompt builds the per-stage analysis request from session state.
func (s stageSpec) userPrompt(st *State) string {
	if s.name == StageSummary {
		return summaryPrompt(st)
	}

	docText := st.DocumentText()
	if docText == "" {
		docText = "No document content available for this session."
	}

	if s.name == StageDataIntake {
		return fmt.Sprintf(`Please conduct comprehensive document intake and initial processing for this life insurance underwriting case:

DOCUMENT INVENTORY:
Total documents submitted: %d
Combined content length: %d characters

DOCUMENT CONTENTS:
%s

Provide a complete document inventory and classification, extract the applicant demographics and key policy parameters, assess document quality and processing readiness, and flag any data quality issues. Your analysis establishes the foundation for all subsequent specialist evaluations.`,
			st.DocumentCount(), len(st.DocumentText()), docText)
	}

	var prior strings.Builder
	if intake, ok := st.Result(StageDataIntake); ok {
		fmt.Fprintf(&prior, "\nPRIOR DATA INTAKE ANALYSIS:\n%s\n", intake.Analysis)
	}

	return fmt.Sprintf(`Please conduct the %s for this life insurance underwriting case:

DOCUMENT CONTENTS:
%s
%s
Provide your complete specialist assessment per your analysis approach and output requirements.`,
		strings.ToLower(s.title), docText, prior.String())
}

// summaryPrompt consolidates every specialist analysis for the terminal stage.
func summaryPrompt(st *State) string {
	insights := st.insights()

	var sb strings.Builder
	fmt.Fprintf(&sb, `Please create the comprehensive executive underwriting summary in HTML format consolidating all specialist findings:

SESSION INFORMATION:
Session ID: %s
Processing date: %s
Total specialists completed: %d

COMPLETE SPECIALIST ANALYSIS RESULTS:
`, st.SessionID(), time.Now().UTC().Format("2006-01-02 15:04:05"), len(insights))

	for _, name := range Order {
		if name == StageSummary {
			continue
		}
		spec := stageSpecs[name]
		analysis, ok := insights[name]
		if !ok {
			analysis = "Not available"
		}
		fmt.Fprintf(&sb, "\n%s:\n%s\n", strings.ToUpper(spec.title), analysis)
	}

	sb.WriteString(`
Produce the mandatory table-based sections, close with the underwriting decision table containing the final recommendation (approve, refer for manual review, or decline) and any conditions, and do not wrap the output in markdown fences.`)

	return sb.String()
}
