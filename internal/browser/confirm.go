package browser

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ahylith/formagent/internal/domain/model"
)

// Confirmation timing. The settle is functional: the post-submit redirect or
// flash message needs time to render before indicators are probed.
const (
	confirmSettle           = 3 * time.Second
	successIndicatorTimeout = 5 * time.Second
)

// Keyword sets scanned over the rendered page when no indicator selector
// classifies the outcome. Success is checked first.
var (
	successKeywords = []string{"success", "submitted", "thank you", "application received"}
	errorKeywords   = []string{"error", "failed", "invalid", "required"}
)

// Confirmer classifies the page state after a submit attempt.
type Confirmer struct {
	page   Page
	logger *slog.Logger
}

// NewConfirmer builds a Confirmer.
func NewConfirmer(page Page, logger *slog.Logger) *Confirmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Confirmer{page: page, logger: logger}
}

// Confirm evaluates, in strict priority order: success indicator selectors,
// error indicator selectors, a success-keyword scan of the page text, an
// error-keyword scan, and finally a default-to-success outcome flagged with
// low confidence. The default keeps rows progressing on sites with no
// detectable confirmation, at a known false-positive cost.
func (c *Confirmer) Confirm(successIndicators, errorIndicators []string) model.SubmissionOutcome {
	c.page.Sleep(confirmSettle)

	for _, indicator := range successIndicators {
		if err := c.page.WaitFor(indicator, StateAttached, successIndicatorTimeout); err != nil {
			continue
		}
		text, found := c.page.Find(indicator)
		if found && strings.TrimSpace(text) != "" {
			return model.SubmissionOutcome{
				Success:    true,
				Message:    "Success: " + strings.TrimSpace(text),
				Indicator:  indicator,
				Confidence: model.ConfidenceHigh,
			}
		}
	}

	for _, indicator := range errorIndicators {
		if text, found := c.page.Find(indicator); found {
			return model.SubmissionOutcome{
				Success:    false,
				Message:    "Error: " + strings.TrimSpace(text),
				Indicator:  indicator,
				Confidence: model.ConfidenceHigh,
			}
		}
	}

	content, err := c.page.Content()
	if err != nil {
		return model.SubmissionOutcome{
			Success:    false,
			Message:    "Error checking confirmation: " + err.Error(),
			Confidence: model.ConfidenceLow,
		}
	}
	lower := strings.ToLower(content)

	for _, keyword := range successKeywords {
		if strings.Contains(lower, keyword) {
			return model.SubmissionOutcome{
				Success:    true,
				Message:    "Detected success keyword: " + keyword,
				Indicator:  keyword,
				Confidence: model.ConfidenceHigh,
			}
		}
	}
	for _, keyword := range errorKeywords {
		if strings.Contains(lower, keyword) {
			return model.SubmissionOutcome{
				Success:    false,
				Message:    "Detected error keyword: " + keyword,
				Indicator:  keyword,
				Confidence: model.ConfidenceHigh,
			}
		}
	}

	return model.SubmissionOutcome{
		Success:    true,
		Message:    "Form submitted (no confirmation detected)",
		Confidence: model.ConfidenceLow,
	}
}
