package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// LocalProvider launches a Chromium instance on this host for every lease.
type LocalProvider struct {
	pw            *playwright.Playwright
	userAgent     string
	timeoutMillis float64
}

// NewLocalProvider builds a provider around an already-running Playwright
// driver.
func NewLocalProvider(pw *playwright.Playwright, userAgent string, timeoutMillis float64) *LocalProvider {
	return &LocalProvider{pw: pw, userAgent: userAgent, timeoutMillis: timeoutMillis}
}

// Name identifies the substrate in logs and stats.
func (p *LocalProvider) Name() string { return "local" }

// Acquire launches a browser, creates an isolated context and page, and
// returns a lease whose Close tears all three down.
func (p *LocalProvider) Acquire(opts PageOptions) (*Lease, error) {
	browser, err := p.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     launchArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, page, err := newStealthPage(browser, opts, p.userAgent, p.timeoutMillis)
	if err != nil {
		browser.Close()
		return nil, err
	}

	return &Lease{
		Page: page,
		closeFn: func() {
			_ = page.Close()
			_ = context.Close()
			_ = browser.Close()
		},
	}, nil
}

// newStealthPage creates a context and page with the shared stealth profile.
// Shared by both substrates.
func newStealthPage(browser playwright.Browser, opts PageOptions, userAgent string, timeoutMillis float64) (playwright.BrowserContext, playwright.Page, error) {
	ua := userAgent
	if opts.UserAgent != "" {
		ua = opts.UserAgent
	}
	if ua == "" {
		ua = defaultUserAgent
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1280, Height: 720},
		UserAgent:         playwright.String(ua),
		JavaScriptEnabled: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(false),
		IgnoreHttpsErrors: playwright.Bool(true),
		ExtraHttpHeaders:  extraHeaders,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create context: %w", err)
	}

	if err := context.AddInitScript(playwright.Script{Content: playwright.String(initScript)}); err != nil {
		context.Close()
		return nil, nil, fmt.Errorf("failed to add init script: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		return nil, nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(timeoutMillis)

	return context, page, nil
}
