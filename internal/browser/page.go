// Package browser contains the per-field and per-row browser interaction
// layer: selector resolution, field fill strategies, the searchable-dropdown
// protocol, submission confirmation, and session ownership.
package browser

import "time"

// ElementState is the readiness a wait requires of an element.
type ElementState string

const (
	// StateAttached waits for the element to be present in the DOM. Hidden
	// elements qualify; the target site hides several inputs behind widgets.
	StateAttached ElementState = "attached"
	// StateVisible waits for the element to be rendered and visible.
	StateVisible ElementState = "visible"
)

// Page is the minimal page surface the fill pipeline needs. The production
// implementation drives Playwright; tests substitute a scripted fake.
type Page interface {
	// Goto navigates and waits for DOM content to load.
	Goto(url string, timeout time.Duration) error
	// WaitForIdle waits for network idle, bounded by timeout.
	WaitForIdle(timeout time.Duration) error
	// URL returns the current page URL.
	URL() string
	// Content returns the rendered page HTML.
	Content() (string, error)
	// WaitFor waits until the first element matching selector reaches state.
	WaitFor(selector string, state ElementState, timeout time.Duration) error
	// Find probes for the first match without waiting, returning its text.
	Find(selector string) (text string, found bool)
	// Click clicks the first element matching selector.
	Click(selector string) error
	// Fill clears and sets the value of the first matching input.
	Fill(selector, value string) error
	// Type types value into the first matching element key by key.
	Type(selector, value string) error
	// SelectOption selects the option with the given value or label on a
	// native select element.
	SelectOption(selector, value string) error
	// Texts returns the text content of every element matching selector, in
	// DOM order.
	Texts(selector string) ([]string, error)
	// ClickNth clicks the n-th (0-based) element matching selector.
	ClickNth(selector string, n int) error
	// Press sends a key press to the focused element.
	Press(key string) error
	// SetValueScript programmatically assigns the value and dispatches
	// input/change events. Last-resort path for non-interactable inputs.
	SetValueScript(selector, value string) error
	// Screenshot captures the viewport to path.
	Screenshot(path string) error
	// Sleep suspends for d using the page clock.
	Sleep(d time.Duration)
}
