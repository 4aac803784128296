// Package policy generates the policy document after a completed
// underwriting run: decline screening, structured field extraction from the
// final summary, artifact rendering, and upload.
package policy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/coverline/coverline/internal/agents"
	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/internal/status"
	"github.com/coverline/coverline/pkg/formatting"
	"github.com/coverline/coverline/pkg/storage"
)

// minSummaryLength is the threshold below which a final summary cannot
// support policy extraction.
const minSummaryLength = 100

// declineMarkers in the final summary block policy generation.
var declineMarkers = []string{"decline", "denied", "failed"}

// Summary carries per-specialist status lines extracted from the
// underwriting summary.
type Summary struct {
	MedicalStatus    string `json:"medical_status"`
	FinancialStatus  string `json:"financial_status"`
	DrivingStatus    string `json:"driving_status"`
	ComplianceStatus string `json:"compliance_status"`
	FinalDecision    string `json:"final_decision"`
	Conditions       string `json:"conditions"`
}

// Data is the structured policy content extracted from the final summary.
type Data struct {
	PolicyNumber         string  `json:"policy_number"`
	InsuredName          string  `json:"insured_name"`
	PolicyType           string  `json:"policy_type"`
	CoverageAmount       string  `json:"coverage_amount"`
	AnnualPremium        string  `json:"annual_premium"`
	EffectiveDate        string  `json:"effective_date"`
	TerminationDate      string  `json:"termination_date"`
	UnderwritingDecision string  `json:"underwriting_decision"`
	Underwriting         Summary `json:"underwriting_summary"`
}

// System generates policy documents for completed sessions. It implements
// the pipeline's post-run hook.
type System interface {
	Run(ctx context.Context, sessionID string) error
}

type system struct {
	capability agents.System
	statuses   status.System
	store      storage.System
	logger     *slog.Logger
}

// New wires the policy generator.
func New(capability agents.System, statuses status.System, store storage.System, logger *slog.Logger) System {
	return &system{
		capability: capability,
		statuses:   statuses,
		store:      store,
		logger:     logger.With("system", "policy"),
	}
}

// Run loads the session's durable status and, when underwriting completed
// with an approving summary, renders and uploads the policy artifact. The
// outcome is patched back into the status document. Sessions that are not
// completed are skipped without writing anything.
func (s *system) Run(ctx context.Context, sessionID string) error {
	doc, err := s.statuses.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}

	if doc.Status != pipeline.StatusCompleted {
		s.logger.Info("policy generation skipped, session not completed",
			"session_id", sessionID, "status", doc.Status)
		return nil
	}

	summary := doc.FinalSummary
	if len(summary) < minSummaryLength {
		rec := status.PolicyRecord{
			Status:    "error",
			Timestamp: timestamp(),
			Detail:    "final summary too short for policy extraction",
		}
		if err := s.statuses.SetPolicy(ctx, sessionID, rec); err != nil {
			s.logger.Warn("policy record write failed", "session_id", sessionID, "error", err)
		}
		return fmt.Errorf("%w: %d characters", ErrSummaryTooShort, len(summary))
	}

	if declined(summary) {
		s.logger.Info("underwriting declined, policy not generated", "session_id", sessionID)
		rec := status.PolicyRecord{
			Status:    "declined",
			Timestamp: timestamp(),
			Detail:    "underwriting declined - policy not generated",
		}
		if err := s.statuses.SetPolicy(ctx, sessionID, rec); err != nil {
			s.logger.Warn("policy record write failed", "session_id", sessionID, "error", err)
		}
		return nil
	}

	data := s.extract(ctx, summary)

	artifact, err := render(sessionID, data, summary)
	if err != nil {
		s.recordError(ctx, sessionID, err)
		return fmt.Errorf("render policy document: %w", err)
	}

	key := fmt.Sprintf("%s/policy_generated_%s.html", sessionID, time.Now().UTC().Format("20060102_150405"))
	if err := s.store.Upload(ctx, key, bytes.NewReader(artifact), "text/html"); err != nil {
		s.recordError(ctx, sessionID, err)
		return fmt.Errorf("upload policy document: %w", err)
	}

	rec := status.PolicyRecord{
		Status:          "generated",
		Timestamp:       timestamp(),
		StorageLocation: key,
		PolicyNumber:    data.PolicyNumber,
	}
	if err := s.statuses.SetPolicy(ctx, sessionID, rec); err != nil {
		return fmt.Errorf("record policy generation: %w", err)
	}

	s.logger.Info("policy document generated",
		"session_id", sessionID,
		"policy_number", data.PolicyNumber,
		"key", key,
	)

	return nil
}

// extract asks the capability for structured policy fields. Extraction
// failures fall back to placeholder data so a completed approval always
// yields an artifact.
func (s *system) extract(ctx context.Context, summary string) Data {
	response, err := s.capability.Complete(ctx, extractionSystemPrompt, extractionPrompt(summary))
	if err != nil {
		s.logger.Warn("policy extraction call failed, using fallback data", "error", err)
		return fallbackData()
	}

	data, err := formatting.Parse[Data](response)
	if err != nil {
		s.logger.Warn("policy extraction parse failed, using fallback data", "error", err)
		return fallbackData()
	}

	if data.PolicyNumber == "" {
		data.PolicyNumber = NewPolicyNumber(time.Now().UTC())
	}
	fillDefaults(&data)

	return data
}

func (s *system) recordError(ctx context.Context, sessionID string, cause error) {
	rec := status.PolicyRecord{
		Status:    "error",
		Timestamp: timestamp(),
		Detail:    cause.Error(),
	}
	if err := s.statuses.SetPolicy(ctx, sessionID, rec); err != nil {
		s.logger.Warn("policy record write failed", "session_id", sessionID, "error", err)
	}
}

// NewPolicyNumber produces a policy number of the form POL-USA-YYYYMMDD-XXXX.
func NewPolicyNumber(now time.Time) string {
	return fmt.Sprintf("POL-USA-%s-%04d", now.Format("20060102"), rand.IntN(10000))
}

func declined(summary string) bool {
	lower := strings.ToLower(summary)
	for _, marker := range declineMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func fallbackData() Data {
	data := Data{PolicyNumber: NewPolicyNumber(time.Now().UTC())}
	fillDefaults(&data)
	return data
}

func fillDefaults(data *Data) {
	fields := []*string{
		&data.InsuredName,
		&data.PolicyType,
		&data.CoverageAmount,
		&data.AnnualPremium,
		&data.EffectiveDate,
		&data.TerminationDate,
		&data.UnderwritingDecision,
	}
	for _, f := range fields {
		if *f == "" {
			*f = "Not Specified"
		}
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
