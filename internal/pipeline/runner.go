package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coverline/coverline/internal/agents"
	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/pkg/retry"
)

// minAnalysisLength is the threshold below which a model response is
// treated as degenerate and retried.
const minAnalysisLength = 10

// StatusSink receives a durable copy of session state after every stage.
type StatusSink interface {
	Save(ctx context.Context, snap Snapshot) error
}

// Runner executes individual stages: idempotency, taxonomy-aware retries,
// degradation of unrecoverable failures into completed results, and status
// persistence after every stage.
type Runner struct {
	capability  agents.System
	sink        StatusSink
	prompts     PromptSource
	maxAttempts int
	transient   time.Duration
	throttle    time.Duration
	soft        time.Duration
	logger      *slog.Logger
}

// NewRunner creates a stage runner.
func NewRunner(cfg *config.PipelineConfig, capability agents.System, sink StatusSink, logger *slog.Logger) *Runner {
	return &Runner{
		capability:  capability,
		sink:        sink,
		maxAttempts: cfg.MaxAttempts,
		transient:   cfg.TransientDelayDuration(),
		throttle:    cfg.ThrottleDelayDuration(),
		soft:        cfg.SoftDelayDuration(),
		logger:      logger.With("system", "runner"),
	}
}

// UsePrompts attaches an instruction override source. Stages without an
// override run with their built-in instructions.
func (r *Runner) UsePrompts(src PromptSource) {
	r.prompts = src
}

// instructionsFor resolves the effective system instructions for a stage.
func (r *Runner) instructionsFor(ctx context.Context, stage, fallback string) string {
	if r.prompts == nil {
		return fallback
	}
	if text, ok := r.prompts.Instructions(ctx, stage); ok {
		return text
	}
	return fallback
}

// RunStage executes one named stage against the session state. A stage that
// already completed returns its recorded sentinel without re-invoking the
// capability. Capability failures never propagate: the stage completes with
// an analysis describing the failure. The returned error is non-nil only
// for unknown stages or a cancelled context.
func (r *Runner) RunStage(ctx context.Context, st *State, name string) (string, error) {
	spec, ok := stageByName(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStage, name)
	}

	if st.Completed(name) {
		r.logger.Debug("stage already completed", "session_id", st.SessionID(), "stage", name)
		return spec.doneMessage(), nil
	}

	// the terminal summary consolidates specialist output; without the
	// full set it reports back to the caller instead of recording a result
	if name == StageSummary && st.CompletedCount() < StageCount-1 {
		return "Insufficient specialist analyses available for summary generation", nil
	}

	r.logger.Info("stage starting", "session_id", st.SessionID(), "stage", name)

	analysis, err := r.invoke(ctx, spec, st)
	if err != nil {
		return "", err
	}

	st.SetResult(name, analysis)
	r.persist(ctx, st)

	r.logger.Info("stage completed",
		"session_id", st.SessionID(),
		"stage", name,
		"analysis_length", len(analysis),
	)

	return analysis, nil
}

// invoke calls the capability under the retry policy and degrades every
// unrecoverable failure into a descriptive analysis string.
func (r *Runner) invoke(ctx context.Context, spec stageSpec, st *State) (string, error) {
	policy := retry.Policy{
		MaxAttempts: r.maxAttempts,
		SoftDelay:   r.soft,
		Classify: func(attempt int, err error) retry.Verdict {
			switch agents.KindOf(err) {
			case agents.KindThrottled:
				return retry.Verdict{Retry: true, Delay: r.throttle * time.Duration(attempt+1)}
			case agents.KindCredential, agents.KindNotFound:
				return retry.Verdict{Retry: false}
			default:
				return retry.Verdict{Retry: true, Delay: r.transient}
			}
		},
	}

	system := r.instructionsFor(ctx, spec.name, spec.system)

	result, err := retry.Do(ctx, policy,
		func(ctx context.Context) (string, error) {
			return r.capability.Complete(ctx, system, spec.userPrompt(st))
		},
		func(result string) bool {
			return len(strings.TrimSpace(result)) > minAnalysisLength
		},
	)
	if err == nil {
		if strings.TrimSpace(result) == "" {
			return "No response received from model", nil
		}
		return result, nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	r.logger.Warn("stage degraded",
		"session_id", st.SessionID(),
		"stage", spec.name,
		"kind", agents.KindOf(err).String(),
		"error", err,
	)

	return r.degradedAnalysis(err), nil
}

func (r *Runner) degradedAnalysis(err error) string {
	switch agents.KindOf(err) {
	case agents.KindCredential:
		return fmt.Sprintf("Authentication error: model provider credentials are missing or expired. Refresh credentials and resubmit. Details: %v", err)
	case agents.KindNotFound:
		return fmt.Sprintf("Model error: the configured model is not available from the provider. Details: %v", err)
	default:
		return fmt.Sprintf("Model call failed after %d attempts. Final error: %v", r.maxAttempts, err)
	}
}

// persist flushes a snapshot to the status sink. Persistence failures are
// logged and swallowed so a storage outage never aborts a run.
func (r *Runner) persist(ctx context.Context, st *State) {
	if r.sink == nil {
		return
	}

	if err := r.sink.Save(ctx, st.Snapshot()); err != nil {
		r.logger.Warn("status persistence failed",
			"session_id", st.SessionID(),
			"error", err,
		)
	}
}
