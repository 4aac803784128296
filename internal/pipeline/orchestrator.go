package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/coverline/coverline/internal/agents"
)

// Run modes reported in pipeline results.
const (
	ModePlanned    = "planned"
	ModeSequential = "sequential"
	ModePreflight  = "preflight_failed"
)

// Hook runs after the terminal stage completes. Implementations must treat
// their own failures as non-fatal to the pipeline.
type Hook interface {
	Run(ctx context.Context, sessionID string) error
}

// RunResult reports the outcome of a full pipeline run.
type RunResult struct {
	SessionID       string `json:"session_id"`
	Mode            string `json:"mode"`
	Summary         string `json:"summary"`
	CompletedStages int    `json:"completed_stages"`
	TotalStages     int    `json:"total_stages"`
}

// Orchestrator drives full pipeline runs: credential preflight, a planned
// tool-calling pass, unconditional sequential fallback, and the
// post-pipeline policy hook.
type Orchestrator struct {
	store      *Store
	runner     *Runner
	capability agents.System
	hook       Hook
	logger     *slog.Logger
}

// NewOrchestrator wires the orchestrator. hook may be nil.
func NewOrchestrator(store *Store, runner *Runner, capability agents.System, hook Hook, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:      store,
		runner:     runner,
		capability: capability,
		hook:       hook,
		logger:     logger.With("system", "orchestrator"),
	}
}

// Store exposes the live session store.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Run executes the full stage sequence for a session. Concurrent runs for
// the same session serialize; stages completed by an earlier run are not
// re-executed.
func (o *Orchestrator) Run(ctx context.Context, sessionID string) (*RunResult, error) {
	st := o.store.Get(sessionID)

	st.AcquireRun()
	defer st.ReleaseRun()

	if err := o.capability.Verify(ctx); err != nil {
		o.logger.Error("capability preflight failed", "session_id", sessionID, "error", err)
		return &RunResult{
			SessionID:   sessionID,
			Mode:        ModePreflight,
			Summary:     preflightDiagnostic(err),
			TotalStages: StageCount,
		}, nil
	}

	mode := ModePlanned
	summary, err := o.runPlanned(ctx, st)
	if err != nil || !st.Completed(StageSummary) {
		if err != nil {
			o.logger.Warn("planned execution failed, falling back to sequential",
				"session_id", sessionID, "error", err)
		} else {
			o.logger.Warn("planned execution left stages incomplete, falling back to sequential",
				"session_id", sessionID, "completed", st.CompletedCount())
		}

		mode = ModeSequential
		summary, err = o.runSequential(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("sequential execution: %w", err)
		}
	}

	if st.Completed(StageSummary) && o.hook != nil {
		if err := o.hook.Run(ctx, sessionID); err != nil {
			o.logger.Warn("policy generation failed", "session_id", sessionID, "error", err)
		}
	}

	o.logger.Info("pipeline run finished",
		"session_id", sessionID,
		"mode", mode,
		"completed", st.CompletedCount(),
	)

	return &RunResult{
		SessionID:       sessionID,
		Mode:            mode,
		Summary:         summary,
		CompletedStages: st.CompletedCount(),
		TotalStages:     StageCount,
	}, nil
}

// runPlanned lets the capability drive stage selection through tool calls.
func (o *Orchestrator) runPlanned(ctx context.Context, st *State) (string, error) {
	dispatch := func(ctx context.Context, tool string, args json.RawMessage) (string, error) {
		spec, ok := stageByTool(tool)
		if !ok {
			return fmt.Sprintf("unknown tool: %s", tool), nil
		}
		return o.runner.RunStage(ctx, st, spec.name)
	}

	instructions := o.runner.instructionsFor(ctx, StagePlanner, plannerInstructions)

	return o.capability.RunTools(ctx, instructions, plannerInput(st), stageTools(), dispatch)
}

// runSequential executes every stage in canonical order. Already completed
// stages are skipped by the runner's idempotency check.
func (o *Orchestrator) runSequential(ctx context.Context, st *State) (string, error) {
	for _, name := range Order {
		if _, err := o.runner.RunStage(ctx, st, name); err != nil {
			return "", err
		}
	}

	summary := st.FinalSummary()
	if summary == "" {
		summary = fallbackSummary(st)
		st.SetResult(StageSummary, summary)
		o.runner.persist(ctx, st)
	}

	return summary, nil
}

// stageTools exposes every stage as a planner tool.
func stageTools() []agents.Tool {
	tools := make([]agents.Tool, 0, StageCount)
	for _, name := range Order {
		spec := stageSpecs[name]
		tools = append(tools, agents.Tool{
			Name:        spec.toolName,
			Description: spec.toolSummary,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_data": map[string]any{
						"type":        "string",
						"description": "The session identifier for the underwriting case",
					},
				},
				"required": []string{"session_data"},
			},
		})
	}
	return tools
}

func preflightDiagnostic(err error) string {
	return fmt.Sprintf(`Underwriting pipeline preflight failed: %v

The model provider credentials are missing or invalid, so no analysis stages were started. Configure the capability credentials and resubmit the session. All uploaded documents remain available for processing.`, err)
}

// fallbackSummary aggregates specialist results when the terminal stage
// could not produce a consolidated summary.
func fallbackSummary(st *State) string {
	insights := st.insights()

	summary := fmt.Sprintf("Underwriting summary (fallback mode) for session %s: %d of %d specialist analyses completed.\n",
		st.SessionID(), len(insights), StageCount-1)

	for _, name := range Order {
		if name == StageSummary {
			continue
		}
		if analysis, ok := insights[name]; ok {
			summary += fmt.Sprintf("\n[%s]\n%s\n", stageSpecs[name].title, analysis)
		}
	}

	return summary
}
