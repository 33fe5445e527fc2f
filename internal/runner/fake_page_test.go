package runner

import (
	"errors"
	"time"

	"github.com/ahylith/formagent/internal/browser"
)

// fakePage scripts just enough page behavior to drive a row end to end.
type fakePage struct {
	present map[string]bool
	content string
	gotoErr error

	gotoURLs    []string
	clicks      []string
	fills       map[string]string
	screenshots []string
}

func newFakePage() *fakePage {
	return &fakePage{
		present: map[string]bool{},
		fills:   map[string]string{},
	}
}

var errNotPresent = errors.New("selector did not resolve")

func (p *fakePage) Goto(url string, _ time.Duration) error {
	p.gotoURLs = append(p.gotoURLs, url)
	return p.gotoErr
}

func (p *fakePage) WaitForIdle(_ time.Duration) error { return nil }
func (p *fakePage) URL() string                       { return "" }
func (p *fakePage) Content() (string, error)          { return p.content, nil }

func (p *fakePage) WaitFor(selector string, _ browser.ElementState, _ time.Duration) error {
	if p.present[selector] {
		return nil
	}
	return errNotPresent
}

func (p *fakePage) Find(_ string) (string, bool) { return "", false }

func (p *fakePage) Click(selector string) error {
	p.clicks = append(p.clicks, selector)
	return nil
}

func (p *fakePage) Fill(selector, value string) error {
	p.fills[selector] = value
	return nil
}

func (p *fakePage) Type(_, _ string) error              { return nil }
func (p *fakePage) SelectOption(_, _ string) error      { return nil }
func (p *fakePage) Texts(_ string) ([]string, error)    { return nil, nil }
func (p *fakePage) ClickNth(_ string, _ int) error      { return nil }
func (p *fakePage) Press(_ string) error                { return nil }
func (p *fakePage) SetValueScript(_, _ string) error    { return nil }
func (p *fakePage) Screenshot(path string) error        { p.screenshots = append(p.screenshots, path); return nil }
func (p *fakePage) Sleep(_ time.Duration)               {}
