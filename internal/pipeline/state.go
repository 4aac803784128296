package pipeline

import (
	"maps"
	"sync"
	"time"
)

// Session lifecycle states.
const (
	StatusCreated    = "created"
	StatusProcessing = "in_progress"
	StatusCompleted  = "completed"
)

// StageResult records the outcome of a completed stage. Every recorded
// stage carries status completed; failures surface inside Analysis.
type StageResult struct {
	Status    string    `json:"status"`
	Analysis  string    `json:"analysis"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is an immutable copy of session state handed to persistence.
type Snapshot struct {
	SessionID     string
	CreatedAt     time.Time
	LastUpdated   time.Time
	Status        string
	Stages        map[string]StageResult
	FinalSummary  string
	DocumentCount int
}

// State is the mutable per-session pipeline state. Field access is guarded
// internally; runMu serializes whole pipeline runs for the session.
type State struct {
	mu    sync.RWMutex
	runMu sync.Mutex

	sessionID     string
	createdAt     time.Time
	lastUpdated   time.Time
	status        string
	documentText  string
	documentCount int
	stages        map[string]StageResult
	finalSummary  string
}

func newState(sessionID string, now time.Time) *State {
	return &State{
		sessionID:   sessionID,
		createdAt:   now,
		lastUpdated: now,
		status:      StatusCreated,
		stages:      make(map[string]StageResult),
	}
}

// AcquireRun blocks until no other pipeline run holds the session, then
// claims it. Release with ReleaseRun.
func (s *State) AcquireRun() { s.runMu.Lock() }

// ReleaseRun releases the run claim taken by AcquireRun.
func (s *State) ReleaseRun() { s.runMu.Unlock() }

// SessionID returns the session identifier.
func (s *State) SessionID() string {
	return s.sessionID
}

// Status returns the current lifecycle status.
func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Completed reports whether the named stage has already run to completion.
func (s *State) Completed(stage string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.stages[stage]
	return ok
}

// Result returns the recorded result for a stage.
func (s *State) Result(stage string) (StageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.stages[stage]
	return r, ok
}

// CompletedCount returns the number of completed stages.
func (s *State) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stages)
}

// FinalSummary returns the terminal stage analysis, if recorded.
func (s *State) FinalSummary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalSummary
}

// DocumentText returns the combined extracted document text.
func (s *State) DocumentText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentText
}

// DocumentCount returns the number of ingested documents.
func (s *State) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentCount
}

// SetDocuments records the extracted document corpus for stage analysis.
func (s *State) SetDocuments(text string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentText = text
	s.documentCount = count
	s.lastUpdated = time.Now().UTC()
}

// SetResult records a completed stage. The terminal stage also captures the
// final summary and transitions the session to completed; any other stage
// moves it to processing.
func (s *State) SetResult(stage, analysis string) StageResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	result := StageResult{
		Status:    "completed",
		Analysis:  analysis,
		Timestamp: now,
	}

	s.stages[stage] = result
	s.lastUpdated = now

	if stage == StageSummary {
		s.finalSummary = analysis
		s.status = StatusCompleted
	} else if s.status != StatusCompleted {
		s.status = StatusProcessing
	}

	return result
}

// Reset clears all stage results, document content, and the final summary,
// returning the session to created.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stages = make(map[string]StageResult)
	s.finalSummary = ""
	s.documentText = ""
	s.documentCount = 0
	s.status = StatusCreated
	s.lastUpdated = time.Now().UTC()
}

// Age returns the time since the session last changed.
func (s *State) Age(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastUpdated)
}

// Snapshot copies the state for persistence or reporting.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		SessionID:     s.sessionID,
		CreatedAt:     s.createdAt,
		LastUpdated:   s.lastUpdated,
		Status:        s.status,
		Stages:        maps.Clone(s.stages),
		FinalSummary:  s.finalSummary,
		DocumentCount: s.documentCount,
	}
}

// insights returns stage analyses keyed by stage name.
func (s *State) insights() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.stages))
	for name, r := range s.stages {
		out[name] = r.Analysis
	}
	return out
}
