package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// pwPage adapts a Playwright page to the Page interface used by the fill
// pipeline.
type pwPage struct {
	page playwright.Page
}

var _ Page = (*pwPage)(nil)

func (p *pwPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(millis(timeout)),
	})
	return err
}

func (p *pwPage) WaitForIdle(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(millis(timeout)),
	})
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}

func (p *pwPage) WaitFor(selector string, state ElementState, timeout time.Duration) error {
	waitState := playwright.WaitForSelectorStateAttached
	if state == StateVisible {
		waitState = playwright.WaitForSelectorStateVisible
	}
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   waitState,
		Timeout: playwright.Float(millis(timeout)),
	})
}

func (p *pwPage) Find(selector string) (string, bool) {
	locator := p.page.Locator(selector)
	count, err := locator.Count()
	if err != nil || count == 0 {
		return "", false
	}
	text, err := locator.First().TextContent()
	if err != nil {
		return "", true
	}
	return text, true
}

func (p *pwPage) Click(selector string) error {
	return p.page.Locator(selector).First().Click()
}

// Fill forces the interaction: the target site keeps several inputs hidden
// behind widget chrome, and a non-forced fill refuses to touch them.
func (p *pwPage) Fill(selector, value string) error {
	return p.page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Force: playwright.Bool(true),
	})
}

func (p *pwPage) Type(selector, value string) error {
	return p.page.Locator(selector).First().PressSequentially(value,
		playwright.LocatorPressSequentiallyOptions{
			Delay: playwright.Float(100),
		})
}

func (p *pwPage) SelectOption(selector, value string) error {
	values := []string{value}
	selected, err := p.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: &values,
	})
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("%q is not a valid option for %s", value, selector)
	}
	return nil
}

func (p *pwPage) Texts(selector string) ([]string, error) {
	return p.page.Locator(selector).AllTextContents()
}

func (p *pwPage) ClickNth(selector string, n int) error {
	return p.page.Locator(selector).Nth(n).Click()
}

func (p *pwPage) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

// SetValueScript assigns the value directly on the DOM node and dispatches
// the notifications frameworks listen for. Used only when a normal fill is
// rejected.
func (p *pwPage) SetValueScript(selector, value string) error {
	const script = `([selector, value]) => {
		const el = document.querySelector(selector);
		if (!el) {
			throw new Error('no element for ' + selector);
		}
		el.value = value;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
	}`
	_, err := p.page.Evaluate(script, []any{selector, value})
	return err
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}

func (p *pwPage) Sleep(d time.Duration) {
	p.page.WaitForTimeout(millis(d))
}

func millis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d.Milliseconds())
}
