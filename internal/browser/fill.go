package browser

import (
	"log/slog"
	"time"

	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
)

// fieldSettle is the pause after every successful fill so page scripts can
// react before the next field is touched. Cosmetic; safe to shorten.
const fieldSettle = 500 * time.Millisecond

// Filler applies one field value to the page, dispatching on the field's
// interaction kind.
type Filler struct {
	page     Page
	resolver *Resolver
	dropdown *DropdownHandler
	logger   *slog.Logger
}

// NewFiller builds a Filler.
func NewFiller(page Page, resolver *Resolver, dropdown *DropdownHandler, logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filler{page: page, resolver: resolver, dropdown: dropdown, logger: logger}
}

// Fill sets one field and returns the record of what was done. Field-level
// failures come back as errors for the caller to collect; they never panic the
// row.
func (f *Filler) Fill(spec model.FieldSpec, value string) (model.FilledField, error) {
	record := model.FilledField{Field: spec.Name, Value: value}

	switch spec.Kind {
	case model.FieldKindSearchableDropdown:
		sel, err := f.dropdown.Select(spec, value)
		if err != nil {
			return record, err
		}
		record.Selector = sel.Surface
		if !sel.Matched {
			record.Confidence = model.ConfidenceLow
		}
	case model.FieldKindSelect:
		selector, err := f.resolver.Resolve(spec.Candidates(), StateAttached)
		if err != nil {
			return record, err
		}
		record.Selector = selector
		if err := f.page.SelectOption(selector, value); err != nil {
			return record, apperrors.FieldFill(spec.Name, err)
		}
	case model.FieldKindClick:
		selector, err := f.resolver.Resolve(spec.Candidates(), StateAttached)
		if err != nil {
			return record, err
		}
		record.Selector = selector
		if err := f.page.Click(selector); err != nil {
			return record, apperrors.FieldFill(spec.Name, err)
		}
	case model.FieldKindText:
		selector, err := f.resolver.Resolve(spec.Candidates(), StateAttached)
		if err != nil {
			return record, err
		}
		record.Selector = selector
		if err := f.fillText(selector, value); err != nil {
			return record, apperrors.FieldFill(spec.Name, err)
		}
	default:
		return record, apperrors.FieldFill(spec.Name, apperrors.Validation("unknown field kind "+string(spec.Kind)))
	}

	f.page.Sleep(fieldSettle)
	return record, nil
}

// fillText clears and sets a text input. When the direct fill is rejected
// (element not interactable through normal means), it falls back to assigning
// the value programmatically and dispatching input/change events.
func (f *Filler) fillText(selector, value string) error {
	err := f.page.Fill(selector, value)
	if err == nil {
		return nil
	}
	f.logger.Warn("direct fill rejected, assigning value via script",
		"selector", selector, "error", err)
	return f.page.SetValueScript(selector, value)
}
