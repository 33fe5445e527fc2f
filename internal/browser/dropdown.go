package browser

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
)

// Timing for the searchable-dropdown protocol. Settle delays are cosmetic
// (safe to shorten); the *Timeout values are functional waits on element
// appearance.
const (
	widgetOpenSettle   = 1 * time.Second
	filterTypeSettle   = 1 * time.Second
	searchInputTimeout = 5 * time.Second
	resultsTimeout     = 5 * time.Second
	// entitySettle lets the host page populate dependent fields after an
	// entity (payer/tenant) is picked. Functional on the target site.
	entitySettle = 5 * time.Second
)

// Selectors for the select2-style widget the target site uses. The rendered
// surface is tried before the field's own candidates because the field's
// underlying input is usually hidden.
var (
	widgetSurfaceSelectors = []string{
		".select2-selection__rendered",
		".select2-container",
	}
	searchInputSelectors = []string{
		".select2-search__field",
		".select2-dropdown input[type='text']",
		".select2-search input",
	}
)

const (
	resultsContainerSelector = ".select2-results, .select2-results__options, ul[class*='select2-results']"
	resultItemsSelector      = ".select2-results li, .select2-results__option"
)

// Selection reports what a dropdown interaction picked.
type Selection struct {
	// Surface is the selector that opened the widget.
	Surface string
	// Text is the displayed text of the chosen option, when known.
	Text string
	// Matched is false when the handler fell back to the first rendered
	// option (or blind keyboard confirm) instead of a text match.
	Matched bool
}

// DropdownHandler drives a searchable-select widget: click to open, type into
// the revealed filter, pick the best matching result. Every step after the
// opening click degrades instead of failing, trading silent mis-selection risk
// for row progress; callers surface that via the Matched flag.
type DropdownHandler struct {
	page     Page
	resolver *Resolver
	logger   *slog.Logger
}

// NewDropdownHandler builds a DropdownHandler.
func NewDropdownHandler(page Page, resolver *Resolver, logger *slog.Logger) *DropdownHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DropdownHandler{page: page, resolver: resolver, logger: logger}
}

// Select runs the full widget protocol for one field. It fails only when the
// opening surface cannot be resolved.
func (h *DropdownHandler) Select(spec model.FieldSpec, value string) (Selection, error) {
	surface, err := h.resolveSurface(spec)
	if err != nil {
		return Selection{}, apperrors.DropdownUnresolved(spec.Name, err.Error())
	}

	sel := Selection{Surface: surface}

	if err := h.page.Click(surface); err != nil {
		return Selection{}, apperrors.DropdownUnresolved(spec.Name, "widget surface did not accept click: "+err.Error())
	}
	h.page.Sleep(widgetOpenSettle)

	h.typeQuery(surface, value)

	if err := h.page.WaitFor(resultsContainerSelector, StateAttached, resultsTimeout); err != nil {
		// Results list never rendered: keyboard navigation is the last resort.
		h.logger.Warn("dropdown results never appeared, falling back to keyboard select",
			"field", spec.Name, "value", value)
		h.keyboardSelect()
		h.settleAfterPick(spec)
		return sel, nil
	}

	text, matched := h.pickResult(spec.Name, value)
	sel.Text = text
	sel.Matched = matched
	h.settleAfterPick(spec)
	return sel, nil
}

// resolveSurface prefers the widget's generic rendered surface (visible) and
// falls back to the field's own candidate list (attached, since the real
// input is often hidden).
func (h *DropdownHandler) resolveSurface(spec model.FieldSpec) (string, error) {
	if surface, err := h.resolver.Resolve(widgetSurfaceSelectors, StateVisible); err == nil {
		return surface, nil
	}
	return h.resolver.Resolve(spec.Candidates(), StateAttached)
}

// typeQuery types value into the revealed filter box, or directly into the
// widget surface when no filter box appears (degraded path).
func (h *DropdownHandler) typeQuery(surface, value string) {
	input, err := h.resolver.ResolveWithTimeout(searchInputSelectors, StateVisible, searchInputTimeout)
	if err == nil {
		if ferr := h.page.Fill(input, value); ferr == nil {
			h.page.Sleep(filterTypeSettle)
			return
		}
	}
	// No filter box: some widget variants take keystrokes on the surface.
	if terr := h.page.Type(surface, value); terr != nil {
		h.logger.Warn("dropdown query could not be typed", "surface", surface, "error", terr)
	}
	h.page.Sleep(filterTypeSettle)
}

// pickResult scans the rendered options in DOM order and clicks the first
// whose text contains the value or is contained in it (case-insensitive,
// symmetric on purpose: widget rows often decorate the entity name). With no
// match it picks the first rendered option rather than failing.
func (h *DropdownHandler) pickResult(field, value string) (string, bool) {
	items, err := h.page.Texts(resultItemsSelector)
	if err != nil || len(items) == 0 {
		h.logger.Warn("no dropdown results rendered, confirming blind", "field", field, "value", value)
		h.keyboardSelect()
		return "", false
	}

	want := strings.ToLower(value)
	for i, item := range items {
		have := strings.ToLower(strings.TrimSpace(item))
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			if err := h.page.ClickNth(resultItemsSelector, i); err == nil {
				return strings.TrimSpace(item), true
			}
		}
	}

	h.logger.Warn("no dropdown result matched, selecting first rendered option",
		"field", field, "value", value, "first", items[0])
	if err := h.page.ClickNth(resultItemsSelector, 0); err != nil {
		h.keyboardSelect()
		return "", false
	}
	return strings.TrimSpace(items[0]), false
}

// keyboardSelect moves to the first option and confirms it.
func (h *DropdownHandler) keyboardSelect() {
	if err := h.page.Press("ArrowDown"); err != nil {
		h.logger.Warn("keyboard fallback ArrowDown failed", "error", err)
	}
	if err := h.page.Press("Enter"); err != nil {
		h.logger.Warn("keyboard fallback Enter failed", "error", err)
	}
}

func (h *DropdownHandler) settleAfterPick(spec model.FieldSpec) {
	if spec.Entity {
		h.page.Sleep(entitySettle)
	}
}
