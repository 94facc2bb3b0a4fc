package browser

import (
	"fmt"
	"net/url"

	"github.com/playwright-community/playwright-go"
)

// RemoteProvider connects to a managed browser session over CDP. The remote
// service owns the browser process; the lease only disconnects from it, and
// session deletion happens on the remote side.
type RemoteProvider struct {
	pw            *playwright.Playwright
	endpoint      string
	userAgent     string
	timeoutMillis float64
}

// NewRemoteProvider builds a provider for the given websocket endpoint.
func NewRemoteProvider(pw *playwright.Playwright, endpoint, userAgent string, timeoutMillis float64) *RemoteProvider {
	return &RemoteProvider{pw: pw, endpoint: endpoint, userAgent: userAgent, timeoutMillis: timeoutMillis}
}

// Name identifies the substrate in logs and stats.
func (p *RemoteProvider) Name() string { return "remote" }

// Acquire connects to the managed session and returns a lease over a fresh
// context and page. Close disconnects without killing the remote browser.
func (p *RemoteProvider) Acquire(opts PageOptions) (*Lease, error) {
	endpoint := p.endpoint
	if opts.SolveChallenges {
		endpoint = withSolveHint(endpoint)
	}

	browser, err := p.pw.Chromium.ConnectOverCDP(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to remote browser: %w", err)
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
			// Disconnect only; the managed service reaps its own sessions.
			_ = browser.Close()
		},
	}, nil
}

// withSolveHint asks the managed service to run its automatic challenge
// solver for this session. The endpoint format is opaque to the rest of the
// system; an unparseable endpoint is passed through untouched.
func withSolveHint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("solveCaptchas", "true")
	u.RawQuery = q.Encode()
	return u.String()
}
