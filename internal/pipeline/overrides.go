package pipeline

import "context"

// StagePlanner identifies the orchestration planner for prompt overrides.
// It is not a runnable stage.
const StagePlanner = "planner"

// PromptSource supplies instruction overrides for pipeline stages. The
// boolean return reports whether an override exists; when it is false the
// built-in instructions apply.
type PromptSource interface {
	Instructions(ctx context.Context, stage string) (string, bool)
}

// PromptStages returns every stage name that accepts an instruction
// override: the planner followed by the analysis stages in order.
func PromptStages() []string {
	stages := make([]string, 0, StageCount+1)
	stages = append(stages, StagePlanner)
	stages = append(stages, Order...)
	return stages
}

// StageInstructions returns the built-in system instructions for a stage,
// including the planner.
func StageInstructions(stage string) (string, bool) {
	if stage == StagePlanner {
		return plannerInstructions, true
	}
	spec, ok := stageByName(stage)
	if !ok {
		return "", false
	}
	return spec.system, true
}
