package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/service"
)

// JobHandlers provides HTTP handlers for job submission and inspection.
type JobHandlers struct {
	Svc *service.JobService
}

// CreateJob handles HTTP requests to submit a new job.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// ListJobs handles HTTP requests to list jobs, newest first. Supports
// status, type, limit and offset query filters.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	opts := &model.JobListOptions{
		Status: model.JobStatus(r.URL.Query().Get("status")),
		Type:   model.JobType(r.URL.Query().Get("type")),
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	}

	jobs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, jobs)
}

// GetJob handles HTTP requests to fetch a single job by id.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// ListJobRuns handles HTTP requests to list the execution attempts of a job.
func (h *JobHandlers) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	runs, err := h.Svc.ListRuns(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, runs)
}

// ListJobResults handles HTTP requests to list the hash lookup results of a job.
func (h *JobHandlers) ListJobResults(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	results, err := h.Svc.ListResults(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, results)
}

// ListStaleJobs handles HTTP requests to report jobs stuck in running longer
// than the configured threshold.
func (h *JobHandlers) ListStaleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Svc.ListStale(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"stale_after": h.Svc.StaleAfter().String(),
		"jobs":        jobs,
	})
}

// GetStats handles HTTP requests for per-status job counts.
func (h *JobHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

func jobIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, apperrors.Validationf("invalid job id %q", raw))
		return 0, false
	}
	return id, true
}

func parseIntQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
