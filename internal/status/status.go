// Package status persists session status documents to blob storage. The
// document is the durable record of pipeline progress: rewritten after
// every stage and patched by the policy hook.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/pkg/storage"
)

// StatusInitializing marks a synthetic document for a session with no
// persisted status yet.
const StatusInitializing = "initializing"

const documentContentType = "application/json"

// AgentStatus is one stage entry in the status document.
type AgentStatus struct {
	Status    string `json:"status"`
	Analysis  string `json:"analysis,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ProcessingSummary aggregates stage completion counts.
type ProcessingSummary struct {
	TotalAgents          int     `json:"total_agents"`
	CompletedAgents      int     `json:"completed_agents"`
	PendingAgents        int     `json:"pending_agents"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// PolicyRecord describes the policy generation outcome patched into the
// status document after the pipeline completes.
type PolicyRecord struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	StorageLocation string `json:"storage_location,omitempty"`
	LocalFile       string `json:"local_file,omitempty"`
	PolicyNumber    string `json:"policy_number,omitempty"`
	Detail          string `json:"detail,omitempty"`
}

// Document is the persisted status schema.
type Document struct {
	SessionID         string                 `json:"session_id"`
	CreatedAt         string                 `json:"created_at"`
	LastUpdated       string                 `json:"last_updated"`
	Status            string                 `json:"status"`
	Agents            map[string]AgentStatus `json:"agents"`
	FinalSummary      string                 `json:"final_summary"`
	ProcessingSummary ProcessingSummary      `json:"processing_summary"`
	PolicyGenerated   *PolicyRecord          `json:"policy_generated,omitempty"`
}

// System persists and retrieves session status documents.
type System interface {
	// Save writes the full status document for a session.
	Save(ctx context.Context, snap pipeline.Snapshot) error
	// Load reads the status document for a session. Missing or corrupt
	// documents yield a synthetic all-pending document, never an error.
	Load(ctx context.Context, sessionID string) (*Document, error)
	// SetPolicy patches the policy record into the persisted document.
	SetPolicy(ctx context.Context, sessionID string, rec PolicyRecord) error
	// Delete removes the persisted document for a session.
	Delete(ctx context.Context, sessionID string) error
}

type system struct {
	store  storage.System
	logger *slog.Logger
}

// New creates a status system backed by blob storage.
func New(store storage.System, logger *slog.Logger) System {
	return &system{
		store:  store,
		logger: logger.With("system", "status"),
	}
}

// Key returns the storage key for a session's status document.
func Key(sessionID string) string {
	return fmt.Sprintf("%s/agent_status.json", sessionID)
}

func (s *system) Save(ctx context.Context, snap pipeline.Snapshot) error {
	doc := fromSnapshot(snap)

	// preserve an existing policy record across stage saves
	if existing, err := s.load(ctx, snap.SessionID); err == nil && existing.PolicyGenerated != nil {
		doc.PolicyGenerated = existing.PolicyGenerated
	}

	return s.write(ctx, doc)
}

func (s *system) Load(ctx context.Context, sessionID string) (*Document, error) {
	doc, err := s.load(ctx, sessionID)
	if err != nil {
		s.logger.Debug("status document unavailable, synthesizing default",
			"session_id", sessionID, "error", err)
		return Default(sessionID), nil
	}
	return doc, nil
}

func (s *system) SetPolicy(ctx context.Context, sessionID string, rec PolicyRecord) error {
	doc, err := s.load(ctx, sessionID)
	if err != nil {
		doc = Default(sessionID)
	}

	doc.PolicyGenerated = &rec
	doc.LastUpdated = now()

	return s.write(ctx, doc)
}

func (s *system) Delete(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, Key(sessionID)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete status document: %w", err)
	}
	return nil
}

func (s *system) load(ctx context.Context, sessionID string) (*Document, error) {
	result, err := s.store.Download(ctx, Key(sessionID))
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read status document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse status document: %w", err)
	}
	if doc.SessionID == "" {
		doc.SessionID = sessionID
	}

	return &doc, nil
}

func (s *system) write(ctx context.Context, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status document: %w", err)
	}

	if err := s.store.Upload(ctx, Key(doc.SessionID), bytes.NewReader(data), documentContentType); err != nil {
		return fmt.Errorf("upload status document: %w", err)
	}

	return nil
}

// Default builds the synthetic all-pending document returned when no
// persisted status exists.
func Default(sessionID string) *Document {
	agents := make(map[string]AgentStatus, pipeline.StageCount)
	for _, name := range pipeline.Order {
		agents[name] = AgentStatus{Status: "pending"}
	}

	ts := now()
	return &Document{
		SessionID:   sessionID,
		CreatedAt:   ts,
		LastUpdated: ts,
		Status:      StatusInitializing,
		Agents:      agents,
		ProcessingSummary: ProcessingSummary{
			TotalAgents:   pipeline.StageCount,
			PendingAgents: pipeline.StageCount,
		},
	}
}

// fromSnapshot converts live session state to the wire document.
func fromSnapshot(snap pipeline.Snapshot) *Document {
	agents := make(map[string]AgentStatus, pipeline.StageCount)
	completed := 0

	for _, name := range pipeline.Order {
		if result, ok := snap.Stages[name]; ok {
			agents[name] = AgentStatus{
				Status:    result.Status,
				Analysis:  result.Analysis,
				Timestamp: result.Timestamp.Format(time.RFC3339),
			}
			completed++
		} else {
			agents[name] = AgentStatus{Status: "pending"}
		}
	}

	pct := math.Round(float64(completed)/float64(pipeline.StageCount)*1000) / 10

	return &Document{
		SessionID:    snap.SessionID,
		CreatedAt:    snap.CreatedAt.Format(time.RFC3339),
		LastUpdated:  snap.LastUpdated.Format(time.RFC3339),
		Status:       snap.Status,
		Agents:       agents,
		FinalSummary: snap.FinalSummary,
		ProcessingSummary: ProcessingSummary{
			TotalAgents:          pipeline.StageCount,
			CompletedAgents:      completed,
			PendingAgents:        pipeline.StageCount - completed,
			CompletionPercentage: pct,
		},
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
