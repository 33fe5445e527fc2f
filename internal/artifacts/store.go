// Package artifacts persists the durable outputs of a job run: the per-job
// results file and per-row screenshots.
package artifacts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ahylith/formagent/internal/domain/model"
)

// Store writes job artifacts under fixed directories.
type Store struct {
	resultsDir    string
	screenshotDir string
	logger        *slog.Logger
}

// NewStore builds a Store. Directories are created lazily on first write.
func NewStore(resultsDir, screenshotDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{resultsDir: resultsDir, screenshotDir: screenshotDir, logger: logger}
}

// ScreenshotPath returns the path a row screenshot should be captured to,
// creating the screenshot directory if needed. Failed rows get an error_
// prefix so operators can scan the directory by eye.
func (s *Store) ScreenshotPath(rowIndex int, failed bool) (string, error) {
	if err := os.MkdirAll(s.screenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	prefix := "row"
	if failed {
		prefix = "error_row"
	}
	name := fmt.Sprintf("%s_%d_%s.png", prefix, rowIndex, time.Now().Format("20060102_150405"))
	return filepath.Join(s.screenshotDir, name), nil
}

// WriteResults serializes the full job record, results sequence and summary
// included, to the per-job results file and returns its path.
func (s *Store) WriteResults(job model.Job) (string, error) {
	if err := os.MkdirAll(s.resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	// Rows are inputs, not outcomes; keep the artifact focused on results.
	job.Rows = nil

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job results: %w", err)
	}

	path := filepath.Join(s.resultsDir, fmt.Sprintf("job_%s_results.json", job.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write job results: %w", err)
	}
	return path, nil
}
