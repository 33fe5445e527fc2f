package browser

import (
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/ahylith/formagent/internal/errors"
)

// Resolver turns an ordered candidate selector list into the first selector
// that resolves on the page. Order is the tie-break: an earlier candidate
// always wins even if a later one would also resolve.
type Resolver struct {
	page    Page
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver builds a Resolver with a per-candidate wait budget.
func NewResolver(page Page, timeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{page: page, timeout: timeout, logger: logger}
}

// Resolve probes each candidate in declared order, waiting up to the
// per-candidate budget for it to reach state, and returns the first success.
// Read-only: no candidate is interacted with. Fails only when every candidate
// times out.
func (r *Resolver) Resolve(candidates []string, state ElementState) (string, error) {
	for _, selector := range candidates {
		if err := r.page.WaitFor(selector, state, r.timeout); err == nil {
			return selector, nil
		}
	}
	return "", apperrors.SelectorUnresolvedf(
		"no selector resolved among: %s", strings.Join(candidates, ", "))
}

// ResolveWithTimeout is Resolve with an explicit per-candidate budget,
// used where a caller needs a tighter or looser wait than the default.
func (r *Resolver) ResolveWithTimeout(
	candidates []string,
	state ElementState,
	timeout time.Duration,
) (string, error) {
	for _, selector := range candidates {
		if err := r.page.WaitFor(selector, state, timeout); err == nil {
			return selector, nil
		}
	}
	return "", apperrors.SelectorUnresolvedf(
		"no selector resolved among: %s", strings.Join(candidates, ", "))
}
