package prompts

import (
	"encoding/json"
	"slices"

	"github.com/coverline/coverline/internal/pipeline"
)

// Stage represents a pipeline stage that a prompt override targets.
type Stage string

var stages = func() []Stage {
	names := pipeline.PromptStages()
	out := make([]Stage, len(names))
	for i, name := range names {
		out[i] = Stage(name)
	}
	return out
}()

// Stages returns the list of valid override stages: the planner followed
// by the analysis stages in execution order.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Stage(raw)
	if !slices.Contains(stages, v) {
		return ErrInvalidStage
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known override stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
