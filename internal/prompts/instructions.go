package prompts

import "github.com/coverline/coverline/internal/pipeline"

// Instructions returns the built-in default instructions for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := pipeline.StageInstructions(string(stage))
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
