// Package captcha detects and clears bot-verification challenges through a
// prioritized chain of interchangeable solvers. Clearing is inherently
// non-deterministic: a challenge may disappear asynchronously without any
// completion signal, so every solver treats absence-of-challenge as the
// primary success signal and explicit solver events as a faster-path
// confirmation only.
package captcha

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
)

// Verdict is the outcome of one solver attempt.
type Verdict int

const (
	// Unsolved means the solver gave up without resolving the challenge;
	// lower-priority solvers may still try.
	Unsolved Verdict = iota

	// Solved means the challenge is gone.
	Solved

	// Aborted means the solver determined the challenge cannot be solved
	// in this context. The chain stops instead of trying further solvers.
	Aborted
)

// Solver detects and attempts to clear a challenge on a page.
type Solver interface {
	Name() string

	// Priority orders solvers in the chain, higher first.
	Priority() int

	// CanHandle reports whether this solver can address what is on the
	// page right now.
	CanHandle(page playwright.Page) bool

	// Solve attempts to clear the challenge within the solver's own
	// time budget.
	Solve(page playwright.Page) Verdict
}

// challengeSelectors is the structural probe battery for challenge
// detection, covering reCAPTCHA v2/v3, the image-selection variant,
// hCaptcha, Cloudflare Turnstile, and generic markers.
var challengeSelectors = []string{
	`iframe[src*="recaptcha"]`,
	".g-recaptcha",
	"[data-sitekey]",
	`div[class*="recaptcha"]`,
	`div[id*="recaptcha"]`,
	`iframe[src*="recaptcha/api2/anchor"]`,
	`iframe[src*="recaptcha/api2/bframe"]`,
	`div[class*="rc-imageselect"]`,
	`td[class*="rc-imageselect-tile"]`,
	`iframe[src*="hcaptcha"]`,
	".h-captcha",
	"[data-hcaptcha-sitekey]",
	`div[class*="cf-turnstile"]`,
	`div[class*="captcha"]`,
	`div[id*="captcha"]`,
	".captcha",
	`[aria-label*="captcha"]`,
	`[data-callback*="captcha"]`,
	`input[placeholder*="captcha"]`,
	`input[name*="captcha"]`,
	`input[id*="captcha"]`,
}

// challengePhrases are the textual markers checked when no structural
// probe matches.
var challengePhrases = []string{
	"i'm not a robot",
	"verify you are human",
}

// Present reports whether a challenge is visible on the page.
func Present(page playwright.Page) bool {
	if probe.AnyVisible(page, challengeSelectors) {
		return true
	}
	return probe.ContainsAny(page, challengePhrases)
}

// Options bound the time budgets of the built-in solvers. Interval is the
// poll tick for both; the timeouts are tick counts, so with the default
// one-second interval they read as seconds.
type Options struct {
	Interval      time.Duration
	RemoteTimeout int
	ManualTimeout int
}

// withDefaults fills unset fields with the production budgets.
func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.RemoteTimeout <= 0 {
		o.RemoteTimeout = 60
	}
	if o.ManualTimeout <= 0 {
		o.ManualTimeout = 120
	}
	return o
}
