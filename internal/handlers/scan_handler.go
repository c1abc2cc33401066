package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/jobs"
	"github.com/floodlight/altmon/internal/models"
)

// ScanHandler exposes the scan coordinator over HTTP. Step is the external
// tick: callers poll it until the job reports a terminal status.
type ScanHandler struct {
	coordinator *jobs.Coordinator
	logger      arbor.ILogger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(coordinator *jobs.Coordinator, logger arbor.ILogger) *ScanHandler {
	return &ScanHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// StartScanHandler handles POST /api/scan/start - starts a fresh scan,
// replacing any prior job unconditionally
func (h *ScanHandler) StartScanHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	scanType := models.ScanType(req.Type)
	if scanType != models.ScanTypeMedia && scanType != models.ScanTypeContent {
		WriteError(w, http.StatusBadRequest, "Invalid scan type: must be media or content")
		return
	}

	job, err := h.coordinator.Start(r.Context(), scanType)
	if err != nil {
		h.logger.Error().Err(err).Str("type", req.Type).Msg("Failed to start scan")
		WriteError(w, http.StatusInternalServerError, "Failed to start scan")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// StepHandler handles POST /api/scan/step - advances the current job by one
// bounded batch. A no-op when no job is running.
func (h *ScanHandler) StepHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	job, err := h.coordinator.Step(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Scan step failed")
		WriteError(w, http.StatusInternalServerError, "Scan step failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// CancelHandler handles POST /api/scan/cancel - cancels a running job
// between batches
func (h *ScanHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	job, err := h.coordinator.Cancel(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to cancel scan")
		WriteError(w, http.StatusInternalServerError, "Failed to cancel scan")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// StatusHandler handles GET /api/scan/status - returns the current job
func (h *ScanHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	job, err := h.coordinator.Current(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load scan status")
		WriteError(w, http.StatusInternalServerError, "Failed to load scan status")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// FindingsHandler handles GET /api/scan/findings/{job_id}
func (h *ScanHandler) FindingsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/scan/findings/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Missing job id")
		return
	}

	collection, err := h.coordinator.Findings(r.Context(), jobID)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to load findings")
		WriteError(w, http.StatusInternalServerError, "Failed to load findings")
		return
	}
	if collection == nil {
		WriteError(w, http.StatusNotFound, "Findings not found")
		return
	}

	WriteJSON(w, http.StatusOK, collection)
}

// SummaryHandler handles GET /api/scan/summary - severity totals for the
// current job's findings, for the dashboard widget
func (h *ScanHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	job, err := h.coordinator.Current(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load scan status")
		WriteError(w, http.StatusInternalServerError, "Failed to load scan status")
		return
	}
	if job == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"job": nil})
		return
	}

	response := map[string]interface{}{
		"job": job,
	}
	if collection, err := h.coordinator.Findings(r.Context(), job.ID); err == nil && collection != nil {
		response["counts"] = collection.Counts
		response["findings_total"] = collection.Len()
	}

	WriteJSON(w, http.StatusOK, response)
}
