// Package otp detects and satisfies one-time-passcode prompts through a
// prioritized handler chain. A secret-derived handler enters the current
// time-based code deterministically; a manual handler waits for a human to
// complete the step out-of-band. Absence of a prompt at phase entry means
// no passcode is required and is never a failure.
package otp

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// Handler attempts to satisfy the passcode step on a page.
type Handler interface {
	Name() string

	// Priority orders handlers in the chain, higher first.
	Priority() int

	// CanHandle reports whether a prompt this handler understands is on
	// the page right now.
	CanHandle(page playwright.Page) bool

	// Handle attempts to complete the passcode step and reports whether
	// the prompt is gone.
	Handle(page playwright.Page, req *types.LoginRequest) bool
}

// inputSelectors is the probe battery for passcode entry fields.
var inputSelectors = []string{
	`input[autocomplete="one-time-code"]`,
	`input[placeholder*="code" i]`,
	`input[placeholder*="verification" i]`,
	`input[placeholder*="2fa" i]`,
	`input[placeholder*="two-factor" i]`,
	`input[name*="code"]`,
	`input[name*="verification"]`,
	`input[id*="code"]`,
	`input[id*="verification"]`,
	`input[data-qa*="code"]`,
	`input[data-qa*="verification"]`,
	`input[type="tel"][maxlength="6"]`,
}

// promptPhrases are the textual markers checked when no input field
// matches.
var promptPhrases = []string{
	"enter verification code",
	"two-factor authentication",
	"enter the 6-digit code",
	"enter your authenticator code",
	"enter your security code",
}

// submitSelectors locate the affordance that confirms an entered code.
var submitSelectors = []string{
	`button[type="submit"]`,
	`button[data-qa*="submit"]`,
	`button[data-qa*="verify"]`,
	`button[data-qa*="confirm"]`,
}

// Present reports whether a passcode prompt is visible on the page.
func Present(page playwright.Page) bool {
	if probe.AnyVisible(page, inputSelectors) {
		return true
	}
	return probe.ContainsAny(page, promptPhrases)
}

// submitCode confirms an entered code, preferring an explicit submit
// affordance and falling back to pressing Enter in the input field.
func submitCode(page playwright.Page) bool {
	if probe.ClickFirst(page, submitSelectors) {
		return true
	}
	if element, found := probe.First(page, inputSelectors); found {
		return element.Press("Enter") == nil
	}
	return false
}

// Options bound the handlers' time budgets. Interval is the poll tick;
// ManualTimeout and SettleTicks are tick counts.
type Options struct {
	Interval time.Duration

	// ManualTimeout caps how long the manual handler waits for a human.
	ManualTimeout int

	// SettleTicks caps how long the code-entry handler waits for the
	// prompt to clear after submission.
	SettleTicks int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.ManualTimeout <= 0 {
		o.ManualTimeout = 120
	}
	if o.SettleTicks <= 0 {
		o.SettleTicks = 3
	}
	return o
}
