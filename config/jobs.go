package config

import "time"

// JobsConfig contains job processing configuration.
type JobsConfig struct {
	// RowDelay is the default pause between rows when a start request does
	// not specify one. Cosmetic; safe to shorten.
	RowDelay time.Duration `env:"ROW_DELAY" envDefault:"2s"`

	// ResultsDir is where per-job results files are written.
	ResultsDir string `env:"RESULTS_DIR" envDefault:"job_results"`

	// UploadDir is where uploaded spreadsheets are kept.
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
}

// Sanitize applies guardrails to job configuration values.
func (j *JobsConfig) Sanitize() {
	if j.RowDelay < 0 {
		j.RowDelay = 0
	}
	if j.ResultsDir == "" {
		j.ResultsDir = "job_results"
	}
	if j.UploadDir == "" {
		j.UploadDir = "uploads"
	}
}
