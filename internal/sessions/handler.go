package sessions

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/coverline/coverline/internal/ingest"
	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/internal/status"
	"github.com/coverline/coverline/pkg/handlers"
	"github.com/coverline/coverline/pkg/pagination"
	"github.com/coverline/coverline/pkg/routes"
	"github.com/coverline/coverline/pkg/sessionid"
)

// HandlerDeps carries the processing collaborators a Handler needs beyond
// the catalog itself.
type HandlerDeps struct {
	Ingest        ingest.System
	Orchestrator  *pipeline.Orchestrator
	Statuses      status.System
	MaxUploadSize int64
}

// Handler provides HTTP endpoints for session operations.
type Handler struct {
	sys        System
	deps       HandlerDeps
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// ProcessResponse reports the outcome of a document submission: the pipeline
// run, the extraction detail, and the updated catalog row.
type ProcessResponse struct {
	Session    *Session            `json:"session"`
	Run        *pipeline.RunResult `json:"run"`
	Extraction *ingest.Result      `json:"extraction"`
}

// SummaryResponse carries the final underwriting summary for a session.
type SummaryResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Summary   string `json:"summary"`
}

// NewHandler creates a Handler with the given catalog, processing deps,
// logger, and pagination config.
func NewHandler(sys System, deps HandlerDeps, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		deps:       deps,
		logger:     logger.With("handler", "sessions"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/process", Handler: h.Process},
			{Method: "GET", Pattern: "/{id}/status", Handler: h.Status},
			{Method: "GET", Pattern: "/{id}/summary", Handler: h.Summary},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of sessions with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching sessions.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create registers a new underwriting session and initializes its live state.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sys.Create(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.deps.Orchestrator.Store().Get(sess.ID)

	handlers.RespondJSON(w, http.StatusCreated, sess)
}

// Find returns a single session catalog row by its id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sess)
}

// Process accepts a multipart ZIP archive of underwriting documents,
// extracts their text, and runs the full analysis pipeline over the session.
// Resubmitting an archive resets the session and starts a fresh run.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := r.ParseMultipartForm(h.deps.MaxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrTooLarge)
		return
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoArchive)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoArchive)
		return
	}

	st := h.deps.Orchestrator.Store().Reset(id)

	if _, err := h.deps.Ingest.ExtractArchive(r.Context(), id, data); err != nil {
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(err), err)
		return
	}

	extraction, err := h.deps.Ingest.ExtractText(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(err), err)
		return
	}

	st.SetDocuments(extraction.Combined, len(extraction.Files))

	if err := h.sys.MarkProcessing(r.Context(), id); err != nil {
		h.logger.Warn("failed to mark session processing", "id", id, "error", err)
	}

	run, err := h.deps.Orchestrator.Run(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, pipeline.MapHTTPStatus(err), err)
		return
	}

	sess, err := h.sys.Record(r.Context(), RecordCommand{
		SessionID:       id,
		Status:          st.Status(),
		DocumentCount:   len(extraction.Files),
		ContentLength:   len(extraction.Combined),
		CompletedStages: run.CompletedStages,
		PipelineMode:    run.Mode,
	})
	if err != nil {
		h.logger.Warn("failed to record session run", "id", id, "error", err)
	}

	handlers.RespondJSON(w, http.StatusOK, ProcessResponse{
		Session:    sess,
		Run:        run,
		Extraction: extraction,
	})
}

// Status returns the durable status document for a session. Sessions that
// have never been processed report every stage as pending.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	doc, err := h.deps.Statuses.Load(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Summary returns the final underwriting summary once the pipeline has
// completed, preferring live state over the durable status document.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if st, found := h.deps.Orchestrator.Store().Find(id); found {
		if summary := st.FinalSummary(); summary != "" {
			handlers.RespondJSON(w, http.StatusOK, SummaryResponse{
				SessionID: id,
				Status:    st.Status(),
				Summary:   summary,
			})
			return
		}
	}

	doc, err := h.deps.Statuses.Load(r.Context(), id)
	if err == nil && doc.FinalSummary != "" {
		handlers.RespondJSON(w, http.StatusOK, SummaryResponse{
			SessionID: id,
			Status:    doc.Status,
			Summary:   doc.FinalSummary,
		})
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondError(w, h.logger, MapHTTPStatus(ErrNoSummary), ErrNoSummary)
}

// Delete removes a session: its catalog row, live state, extraction
// workspace, and durable status document.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.deps.Orchestrator.Store().Remove(id)

	if err := h.deps.Ingest.RemoveSession(id); err != nil {
		h.logger.Warn("failed to remove session workspace", "id", id, "error", err)
	}

	if err := h.deps.Statuses.Delete(r.Context(), id); err != nil {
		h.logger.Warn("failed to delete status document", "id", id, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !sessionid.Valid(id) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return "", false
	}
	return id, true
}
