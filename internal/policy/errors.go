package policy

import "errors"

// ErrSummaryTooShort indicates a final summary below the extraction threshold.
var ErrSummaryTooShort = errors.New("final summary too short")
