// Package pagetest provides in-memory playwright fakes for exercising login
// logic without a browser. The fakes embed the playwright interfaces and
// implement only the methods the auth layers touch; anything else panics
// with a nil-method error, which is the desired behavior in a test.
package pagetest

import (
	"errors"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// FakeElement is a scriptable stand-in for a DOM element handle.
type FakeElement struct {
	playwright.ElementHandle

	Visible  bool
	Disabled bool
	Text     string
	Attrs    map[string]string

	mu      sync.Mutex
	fills   []string
	clicks  int
	presses []string
}

// NewElement returns a visible, enabled element.
func NewElement() *FakeElement { return &FakeElement{Visible: true} }

func (e *FakeElement) IsVisible() (bool, error)  { return e.Visible, nil }
func (e *FakeElement) IsDisabled() (bool, error) { return e.Disabled, nil }

func (e *FakeElement) TextContent() (string, error) { return e.Text, nil }

func (e *FakeElement) GetAttribute(name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *FakeElement) Fill(value string, options ...playwright.ElementHandleFillOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fills = append(e.fills, value)
	return nil
}

func (e *FakeElement) Click(options ...playwright.ElementHandleClickOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clicks++
	return nil
}

func (e *FakeElement) Press(key string, options ...playwright.ElementHandlePressOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presses = append(e.presses, key)
	return nil
}

// Fills returns every value filled into the element, in order.
func (e *FakeElement) Fills() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.fills...)
}

// Clicks returns how many times the element was clicked.
func (e *FakeElement) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Presses returns every key pressed on the element, in order.
func (e *FakeElement) Presses() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.presses...)
}

// FakeContext is a scriptable stand-in for a browser context.
type FakeContext struct {
	playwright.BrowserContext

	CookieList []playwright.Cookie
	CookiesErr error
}

func (c *FakeContext) Cookies(urls ...string) ([]playwright.Cookie, error) {
	if c.CookiesErr != nil {
		return nil, c.CookiesErr
	}
	return c.CookieList, nil
}

// FakePage is a scriptable stand-in for a page. Selectors resolve against
// the Elements map by exact string match; navigation is recorded and, via
// GotoFunc, can mutate the fake to simulate the page that loads.
type FakePage struct {
	playwright.Page

	mu       sync.Mutex
	url      string
	html     string
	title    string
	elements map[string]*FakeElement
	gotos    []string

	// GotoFunc, when set, runs on every Goto after the URL updates.
	GotoFunc func(url string)

	// EvaluateFunc, when set, answers Evaluate calls by expression.
	EvaluateFunc func(expression string) (interface{}, error)

	ContentErr error
	Ctx        *FakeContext
}

// NewPage returns an empty page at about:blank with a cookie-less context.
func NewPage() *FakePage {
	return &FakePage{
		url:      "about:blank",
		elements: map[string]*FakeElement{},
		Ctx:      &FakeContext{},
	}
}

// SetURL moves the page to the given address without recording navigation.
func (p *FakePage) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// SetContent replaces the page HTML.
func (p *FakePage) SetContent(html string, options ...playwright.PageSetContentOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
	return nil
}

// SetTitle replaces the page title.
func (p *FakePage) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

// AddElement registers an element under the given selector and returns it.
func (p *FakePage) AddElement(selector string, element *FakeElement) *FakeElement {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = element
	return element
}

// RemoveElement drops the element registered under the selector, simulating
// a prompt that disappeared.
func (p *FakePage) RemoveElement(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// Gotos returns every address navigated to, in order.
func (p *FakePage) Gotos() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.gotos...)
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *FakePage) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ContentErr != nil {
		return "", p.ContentErr
	}
	return p.html, nil
}

func (p *FakePage) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, nil
}

func (p *FakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.mu.Lock()
	p.gotos = append(p.gotos, url)
	p.url = url
	fn := p.GotoFunc
	p.mu.Unlock()
	if fn != nil {
		fn(url)
	}
	return nil, nil
}

func (p *FakePage) QuerySelector(selector string, options ...playwright.PageQuerySelectorOptions) (playwright.ElementHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	element, ok := p.elements[selector]
	if !ok {
		return nil, nil
	}
	return element, nil
}

func (p *FakePage) QuerySelectorAll(selector string) ([]playwright.ElementHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	element, ok := p.elements[selector]
	if !ok {
		return nil, nil
	}
	return []playwright.ElementHandle{element}, nil
}

func (p *FakePage) Fill(selector, value string, options ...playwright.PageFillOptions) error {
	p.mu.Lock()
	element, ok := p.elements[selector]
	p.mu.Unlock()
	if !ok {
		return errors.New("no element matches selector " + selector)
	}
	return element.Fill(value)
}

func (p *FakePage) Click(selector string, options ...playwright.PageClickOptions) error {
	p.mu.Lock()
	element, ok := p.elements[selector]
	p.mu.Unlock()
	if !ok {
		return errors.New("no element matches selector " + selector)
	}
	return element.Click()
}

func (p *FakePage) WaitForSelector(selector string, options ...playwright.PageWaitForSelectorOptions) (playwright.ElementHandle, error) {
	p.mu.Lock()
	element, ok := p.elements[selector]
	p.mu.Unlock()
	if !ok {
		return nil, errors.New("timeout waiting for selector " + selector)
	}
	return element, nil
}

func (p *FakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	if p.EvaluateFunc != nil {
		return p.EvaluateFunc(expression)
	}
	return nil, nil
}

func (p *FakePage) Context() playwright.BrowserContext { return p.Ctx }

func (p *FakePage) SetDefaultTimeout(timeout float64) {}

// HasText reports whether the page HTML contains the phrase, ignoring case.
// A convenience for test assertions, not used by production code.
func (p *FakePage) HasText(phrase string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Contains(strings.ToLower(p.html), strings.ToLower(phrase))
}
