package browser

import (
	"errors"
	"time"
)

// fakePage is a scripted Page for pipeline tests. Selectors listed in present
// resolve immediately; everything else times out. Interactions are recorded.
type fakePage struct {
	present   map[string]bool
	texts     map[string][]string
	findTexts map[string]string
	content   string

	urlSeq []string
	urlIdx int

	gotoErr  error
	fillErrs map[string]error
	clickErr map[string]error

	gotoURLs    []string
	waits       []string
	clicks      []string
	nthClicks   []int
	fills       map[string]string
	typed       map[string]string
	selects     map[string]string
	scripted    map[string]string
	pressed     []string
	screenshots []string
	slept       time.Duration
}

func newFakePage() *fakePage {
	return &fakePage{
		present:   map[string]bool{},
		texts:     map[string][]string{},
		findTexts: map[string]string{},
		fillErrs:  map[string]error{},
		clickErr:  map[string]error{},
		fills:     map[string]string{},
		typed:     map[string]string{},
		selects:   map[string]string{},
		scripted:  map[string]string{},
	}
}

var errNotPresent = errors.New("selector did not resolve")

func (p *fakePage) Goto(url string, _ time.Duration) error {
	p.gotoURLs = append(p.gotoURLs, url)
	return p.gotoErr
}

func (p *fakePage) WaitForIdle(_ time.Duration) error { return nil }

func (p *fakePage) URL() string {
	if len(p.urlSeq) == 0 {
		return ""
	}
	u := p.urlSeq[p.urlIdx]
	if p.urlIdx < len(p.urlSeq)-1 {
		p.urlIdx++
	}
	return u
}

func (p *fakePage) Content() (string, error) { return p.content, nil }

func (p *fakePage) WaitFor(selector string, _ ElementState, _ time.Duration) error {
	p.waits = append(p.waits, selector)
	if p.present[selector] {
		return nil
	}
	return errNotPresent
}

func (p *fakePage) Find(selector string) (string, bool) {
	text, ok := p.findTexts[selector]
	return text, ok
}

func (p *fakePage) Click(selector string) error {
	p.clicks = append(p.clicks, selector)
	return p.clickErr[selector]
}

func (p *fakePage) Fill(selector, value string) error {
	if err := p.fillErrs[selector]; err != nil {
		return err
	}
	p.fills[selector] = value
	return nil
}

func (p *fakePage) Type(selector, value string) error {
	p.typed[selector] = value
	return nil
}

func (p *fakePage) SelectOption(selector, value string) error {
	p.selects[selector] = value
	return nil
}

func (p *fakePage) Texts(selector string) ([]string, error) {
	return p.texts[selector], nil
}

func (p *fakePage) ClickNth(selector string, n int) error {
	p.nthClicks = append(p.nthClicks, n)
	return p.clickErr[selector]
}

func (p *fakePage) Press(key string) error {
	p.pressed = append(p.pressed, key)
	return nil
}

func (p *fakePage) SetValueScript(selector, value string) error {
	p.scripted[selector] = value
	return nil
}

func (p *fakePage) Screenshot(path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}

func (p *fakePage) Sleep(d time.Duration) { p.slept += d }
