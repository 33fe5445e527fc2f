// Package model defines the core data types and structures used throughout the formagent job system.
package model

import (
	"errors"
	"strings"
	"time"
)

// JobStatus represents the current status of a job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusCreated indicates a job has been ingested and is waiting to be started.
	JobStatusCreated JobStatus = "created"
	// JobStatusStarting indicates a start was accepted and the browser session is being prepared.
	JobStatusStarting JobStatus = "starting"
	// JobStatusRunning indicates rows are currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates all rows have been processed.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusError indicates the job aborted on a session-level failure.
	JobStatusError JobStatus = "error"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusCreated || s == JobStatusStarting || s == JobStatusRunning ||
		s == JobStatusCompleted || s == JobStatusError
}

// Terminal returns true when no further processing can happen without a reset.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Active returns true while a run owns the job (between start acceptance and a terminal state).
func (s JobStatus) Active() bool {
	return s == JobStatusStarting || s == JobStatusRunning
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus to allow env/JSON parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return errors.New("invalid job status: " + string(text))
	}
	*s = v
	return nil
}

// Row is one input record from the uploaded spreadsheet. Index is 0-based and
// stable for the lifetime of the job. Values may be missing fields declared in
// the mapping; those fields are skipped at fill time.
type Row struct {
	Index  int               `json:"index"`
	Values map[string]string `json:"values"`
}

// Job is the unit of work: one spreadsheet processed against one target form.
// All mutation happens through the registry or the runner that owns the job.
type Job struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename,omitempty"`
	Status      JobStatus    `json:"status"`
	TargetURL   string       `json:"target_url,omitempty"`
	Rows        []Row        `json:"rows,omitempty"`
	Mapping     FieldMapping `json:"field_mapping,omitempty"`
	Config      JobConfig    `json:"config"`
	Results     []FillResult `json:"results"`
	Summary     *JobSummary  `json:"summary,omitempty"`
	Errors      []string     `json:"errors"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// CompletedRows counts rows that filled and (where attempted) submitted cleanly.
func (j *Job) CompletedRows() int {
	n := 0
	for i := range j.Results {
		if j.Results[i].Status == RowStatusSuccess {
			n++
		}
	}
	return n
}

// JobConfig carries the per-job knobs supplied at start time.
type JobConfig struct {
	// SubmitSelector overrides the built-in submit button candidates when set.
	SubmitSelector string `json:"submit_selector,omitempty"`
	// SuccessIndicators are selectors checked first when classifying the post-submit page.
	SuccessIndicators []string `json:"success_indicators,omitempty"`
	// ErrorIndicators are selectors checked after the success indicators.
	ErrorIndicators []string `json:"error_indicators,omitempty"`
	// RowDelay is the pause between consecutive rows. Cosmetic; safe to shorten.
	RowDelay time.Duration `json:"row_delay,omitempty"`
	// Headless controls the browser session for this job.
	Headless bool `json:"headless,omitempty"`
}

// RowStatus classifies the outcome of processing one row.
type RowStatus string

const (
	// RowStatusSuccess means the row was processed without a row-level failure.
	// Individual field errors do not flip a row to error as long as processing
	// itself ran to the end; callers must inspect Errors for partial fills.
	RowStatusSuccess RowStatus = "success"
	// RowStatusError means navigation or row processing itself failed.
	RowStatusError RowStatus = "error"
)

// FilledField records one field that was set on the page, including which
// candidate selector won.
type FilledField struct {
	Field    string `json:"field"`
	Selector string `json:"selector"`
	Value    string `json:"value"`
	// Confidence is ConfidenceLow when a dropdown fell back to the first
	// rendered option instead of a text match.
	Confidence string `json:"confidence,omitempty"`
}

// SubmissionOutcome classifies the page state after a submit attempt.
type SubmissionOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Indicator names the selector or keyword that produced the classification, if any.
	Indicator string `json:"indicator,omitempty"`
	// Confidence is ConfidenceLow when the outcome was defaulted rather than observed.
	Confidence string `json:"confidence,omitempty"`
}

// Confidence markers for outcomes produced by best-effort fallback paths.
const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// FillResult is the complete record of one processed row.
type FillResult struct {
	RowIndex       int                `json:"row_index"`
	Status         RowStatus          `json:"status"`
	FilledFields   []FilledField      `json:"filled_fields"`
	Errors         []string           `json:"errors"`
	ScreenshotPath string             `json:"screenshot_path,omitempty"`
	Submission     *SubmissionOutcome `json:"submission,omitempty"`
}

// JobSummary aggregates a completed job's results.
type JobSummary struct {
	TotalRows      int     `json:"total_rows"`
	SuccessfulRows int     `json:"successful_rows"`
	FailedRows     int     `json:"failed_rows"`
	SuccessRate    float64 `json:"success_rate"`
}

// Summarize computes the JobSummary for a results sequence.
func Summarize(results []FillResult) JobSummary {
	total := len(results)
	successful := 0
	for i := range results {
		if results[i].Status == RowStatusSuccess {
			successful++
		}
	}
	summary := JobSummary{
		TotalRows:      total,
		SuccessfulRows: successful,
		FailedRows:     total - successful,
	}
	if total > 0 {
		summary.SuccessRate = float64(successful) / float64(total) * 100
	}
	return summary
}

// StartJobRequest is the payload accepted by the start operation.
type StartJobRequest struct {
	TargetURL      string       `json:"website_url"`
	Mapping        FieldMapping `json:"field_mapping,omitempty"`
	SubmitSelector string       `json:"submit_selector,omitempty"`
	// Indicator selector lists are optional; keyword scanning covers their absence.
	SuccessIndicators []string `json:"success_indicators,omitempty"`
	ErrorIndicators   []string `json:"error_indicators,omitempty"`
	RowDelaySeconds   int      `json:"row_delay_seconds,omitempty"`
	Headless          *bool    `json:"headless,omitempty"`
}

// Validate validates the StartJobRequest fields.
func (r *StartJobRequest) Validate() error {
	if strings.TrimSpace(r.TargetURL) == "" {
		return errors.New("website_url is required")
	}
	if !strings.HasPrefix(r.TargetURL, "http://") && !strings.HasPrefix(r.TargetURL, "https://") {
		return errors.New("website_url must be an absolute http(s) URL")
	}
	if r.RowDelaySeconds < 0 {
		return errors.New("row_delay_seconds must be >= 0")
	}
	for _, f := range r.Mapping {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
