// Package httpx provides HTTP handlers and utilities for the formagent job system API.
package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ahylith/formagent/config"
	"github.com/ahylith/formagent/internal/domain/job"
	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
	"github.com/ahylith/formagent/internal/ingest"
)

// JobStarter accepts a start request and launches the asynchronous run.
type JobStarter interface {
	Start(jobID string, params job.StartParams) (model.Job, error)
}

// JobHandlers serves the job lifecycle API: upload, start, status, results, reset.
type JobHandlers struct {
	Registry *job.Registry
	Starter  JobStarter
	HTTP     config.HTTPConfig
	Jobs     config.JobsConfig
	Browser  config.BrowserConfig
	Logger   *slog.Logger
}

// uploadResponse is returned after a successful spreadsheet ingest.
type uploadResponse struct {
	JobID     string   `json:"job_id"`
	Filename  string   `json:"filename"`
	TotalRows int      `json:"total_rows"`
	Columns   []string `json:"columns"`
	Status    string   `json:"status"`
}

// Upload ingests a spreadsheet and registers a job for it.
// POST /api/jobs (multipart, field "file", optional field "website_url").
func (h *JobHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.HTTP.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.HTTP.MaxUploadBytes); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_multipart", Err: err})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_file",
			Err:     errors.New(`multipart field "file" is required`),
		})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "read_upload", Err: err})
		return
	}

	rows, err := ingest.Read(bytes.NewReader(data), header.Filename)
	if err != nil {
		WriteAppError(w, apperrors.Validation(err.Error()))
		return
	}
	if err := ingest.Validate(rows); err != nil {
		WriteAppError(w, apperrors.Validation(err.Error()))
		return
	}

	j := h.Registry.Create(header.Filename, r.FormValue("website_url"), rows)
	h.saveUpload(r, j.ID, header.Filename, data)

	WriteJSON(w, http.StatusCreated, uploadResponse{
		JobID:     j.ID,
		Filename:  j.Filename,
		TotalRows: len(rows),
		Columns:   columnNames(rows),
		Status:    string(j.Status),
	})
}

// saveUpload keeps the raw file for operators. Best effort only.
func (h *JobHandlers) saveUpload(r *http.Request, jobID, filename string, data []byte) {
	if h.Jobs.UploadDir == "" {
		return
	}
	if err := os.MkdirAll(h.Jobs.UploadDir, 0o755); err != nil {
		h.Logger.WarnContext(r.Context(), "upload dir unavailable", "error", err)
		return
	}
	path := filepath.Join(h.Jobs.UploadDir, jobID+"_"+filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		h.Logger.WarnContext(r.Context(), "upload copy failed", "path", path, "error", err)
	}
}

func columnNames(rows []model.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0].Values))
	for name := range rows[0].Values {
		cols = append(cols, name)
	}
	return cols
}

// Start accepts the start request for a created job and launches the run.
// POST /api/jobs/{id}/start.
func (h *JobHandlers) Start(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req model.StartJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteAppError(w, apperrors.Validation(err.Error()))
		return
	}

	j, err := h.Starter.Start(id, h.startParams(req))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     j.ID,
		"status":     j.Status,
		"target_url": j.TargetURL,
		"total_rows": len(j.Rows),
	})
}

// startParams resolves the request against configured defaults. A missing
// mapping falls back to the built-in mapping for the target site.
func (h *JobHandlers) startParams(req model.StartJobRequest) job.StartParams {
	mapping := req.Mapping
	if len(mapping) == 0 {
		mapping = model.DefaultMappingFor(req.TargetURL)
	}

	rowDelay := h.Jobs.RowDelay
	if req.RowDelaySeconds > 0 {
		rowDelay = time.Duration(req.RowDelaySeconds) * time.Second
	}
	headless := h.Browser.Headless
	if req.Headless != nil {
		headless = *req.Headless
	}

	return job.StartParams{
		TargetURL: req.TargetURL,
		Mapping:   mapping,
		Config: model.JobConfig{
			SubmitSelector:    req.SubmitSelector,
			SuccessIndicators: req.SuccessIndicators,
			ErrorIndicators:   req.ErrorIndicators,
			RowDelay:          rowDelay,
			Headless:          headless,
		},
	}
}

// statusResponse is the polling view of a job's progress.
type statusResponse struct {
	JobID         string            `json:"job_id"`
	Status        model.JobStatus   `json:"status"`
	TotalRows     int               `json:"total_rows"`
	ProcessedRows int               `json:"processed_rows"`
	CompletedRows int               `json:"completed_rows"`
	Summary       *model.JobSummary `json:"summary,omitempty"`
	Errors        []string          `json:"errors"`
	StartedAt     *time.Time        `json:"started_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// GetStatus reports job progress. GET /api/jobs/{id}/status.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.Registry.Get(r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, statusForJob(j))
}

func statusForJob(j model.Job) statusResponse {
	return statusResponse{
		JobID:         j.ID,
		Status:        j.Status,
		TotalRows:     len(j.Rows),
		ProcessedRows: len(j.Results),
		CompletedRows: j.CompletedRows(),
		Summary:       j.Summary,
		Errors:        j.Errors,
		StartedAt:     j.StartedAt,
		CompletedAt:   j.CompletedAt,
	}
}

// GetResults returns the full per-row results recorded so far.
// GET /api/jobs/{id}/results.
func (h *JobHandlers) GetResults(w http.ResponseWriter, r *http.Request) {
	j, err := h.Registry.Get(r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"job_id":  j.ID,
		"status":  j.Status,
		"results": j.Results,
		"summary": j.Summary,
		"errors":  j.Errors,
	})
}

// Reset returns a terminal job to created so it can be started again.
// POST /api/jobs/{id}/reset.
func (h *JobHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	j, err := h.Registry.Reset(r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"job_id":  j.ID,
		"status":  j.Status,
		"message": fmt.Sprintf("job %s reset to %s", j.ID, j.Status),
	})
}
