// Package runner sequences rows through the browser fill pipeline and drives
// whole jobs to a terminal state.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahylith/formagent/internal/browser"
	"github.com/ahylith/formagent/internal/domain/model"
)

// pageReadySettle gives the loaded form a moment to finish wiring its widgets
// before the first field is touched. Cosmetic; safe to shorten.
const pageReadySettle = 2 * time.Second

// postSubmitIdle bounds the wait for post-submit navigation. Best effort:
// forms that submit without navigating are normal.
const postSubmitIdle = 15 * time.Second

// submitWait is the per-candidate wait for a submit control.
const submitWait = 5 * time.Second

// defaultSubmitSelectors are tried in order when a job does not pin a submit
// control. The AppFolio save button leads.
var defaultSubmitSelectors = []string{
	"#save_button",
	`input[type="submit"][value="Save"]`,
	`button:has-text("Save")`,
	`input[type="submit"]`,
	`button[type="submit"]`,
	`button:has-text("Submit")`,
	`button:has-text("Apply")`,
	`button:has-text("Send")`,
}

// ScreenshotNamer allocates artifact paths for row screenshots.
type ScreenshotNamer interface {
	ScreenshotPath(rowIndex int, failed bool) (string, error)
}

// RowProcessor runs one row end to end against an exclusively-owned page:
// navigate, fill every mapped field best-effort, submit when the fill was
// clean, classify the confirmation, and capture a screenshot either way.
type RowProcessor struct {
	page      browser.Page
	navigator *browser.Navigator
	filler    *browser.Filler
	resolver  *browser.Resolver
	confirmer *browser.Confirmer
	shots     ScreenshotNamer
	logger    *slog.Logger
}

// RowProcessorOptions configures a RowProcessor bound to one page.
type RowProcessorOptions struct {
	Page              browser.Page
	SelectorTimeout   time.Duration
	NavigationTimeout time.Duration
	LoginWait         time.Duration
	Screenshots       ScreenshotNamer
	Logger            *slog.Logger
}

// NewRowProcessor wires the per-page fill pipeline.
func NewRowProcessor(opts RowProcessorOptions) *RowProcessor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := browser.NewResolver(opts.Page, opts.SelectorTimeout, logger)
	dropdown := browser.NewDropdownHandler(opts.Page, resolver, logger)
	return &RowProcessor{
		page:      opts.Page,
		navigator: browser.NewNavigator(opts.Page, opts.NavigationTimeout, opts.LoginWait, logger),
		filler:    browser.NewFiller(opts.Page, resolver, dropdown, logger),
		resolver:  resolver,
		confirmer: browser.NewConfirmer(opts.Page, logger),
		shots:     opts.Screenshots,
		logger:    logger,
	}
}

// Process runs one row. Field-level failures are collected, never propagated:
// a bad field does not stop the remaining fields, and a row with field errors
// skips submission but still counts as processed. Only navigation failure
// marks the row itself as errored.
func (p *RowProcessor) Process(
	ctx context.Context,
	row model.Row,
	mapping model.FieldMapping,
	cfg model.JobConfig,
	targetURL string,
) model.FillResult {
	result := model.FillResult{
		RowIndex:     row.Index,
		Status:       model.RowStatusSuccess,
		FilledFields: []model.FilledField{},
		Errors:       []string{},
	}

	if err := p.navigator.Go(ctx, targetURL); err != nil {
		result.Status = model.RowStatusError
		result.Errors = append(result.Errors, err.Error())
		p.capture(&result)
		return result
	}

	p.page.Sleep(pageReadySettle)
	p.fillFields(&result, row, mapping)
	p.capture(&result)

	if len(result.Errors) == 0 {
		p.submitAndConfirm(&result, cfg)
	} else {
		result.Submission = &model.SubmissionOutcome{
			Success: false,
			Message: "Skipped submission due to fill errors",
		}
	}

	return result
}

// fillFields walks the mapping in declared order, skipping fields the row has
// no value for.
func (p *RowProcessor) fillFields(result *model.FillResult, row model.Row, mapping model.FieldMapping) {
	for _, spec := range mapping {
		value, ok := row.Values[spec.Name]
		if !ok || value == "" {
			continue
		}
		record, err := p.filler.Fill(spec, value)
		if err != nil {
			msg := fmt.Sprintf("Failed to fill %s (%s): %v", spec.Name, spec.Selectors, err)
			result.Errors = append(result.Errors, msg)
			p.logger.Warn("field fill failed", "row", row.Index, "field", spec.Name, "error", err)
			continue
		}
		result.FilledFields = append(result.FilledFields, record)
	}
}

// submitAndConfirm clicks the first resolvable submit control and classifies
// the resulting page.
func (p *RowProcessor) submitAndConfirm(result *model.FillResult, cfg model.JobConfig) {
	candidates := defaultSubmitSelectors
	if cfg.SubmitSelector != "" {
		candidates = []string{cfg.SubmitSelector}
	}

	selector, err := p.resolver.ResolveWithTimeout(candidates, browser.StateVisible, submitWait)
	if err == nil {
		err = p.page.Click(selector)
	}
	if err != nil {
		result.Errors = append(result.Errors, "Failed to submit form")
		result.Submission = &model.SubmissionOutcome{
			Success: false,
			Message: "no submit control resolved or click failed",
		}
		return
	}

	if ierr := p.page.WaitForIdle(postSubmitIdle); ierr != nil {
		// Forms may submit in place with no navigation.
		p.logger.Debug("no post-submit navigation", "error", ierr)
	}

	outcome := p.confirmer.Confirm(cfg.SuccessIndicators, cfg.ErrorIndicators)
	result.Submission = &outcome
}

// capture takes the per-row screenshot. Failures are swallowed: a missing
// screenshot must never fail a row.
func (p *RowProcessor) capture(result *model.FillResult) {
	if p.shots == nil {
		return
	}
	path, err := p.shots.ScreenshotPath(result.RowIndex, result.Status == model.RowStatusError)
	if err == nil {
		err = p.page.Screenshot(path)
	}
	if err != nil {
		p.logger.Warn("screenshot capture failed", "row", result.RowIndex, "error", err)
		return
	}
	result.ScreenshotPath = path
}
