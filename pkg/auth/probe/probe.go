// Package probe holds the low-level page inspection helpers shared by the
// challenge, OTP, and provider layers. Every helper treats playwright errors
// as "not present": a probe that cannot run is indistinguishable from a probe
// that found nothing, so a broken selector never aborts a login attempt.
package probe

import (
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// First returns the first visible element matched by any of the selectors,
// in order. The boolean reports whether one was found.
func First(page playwright.Page, selectors []string) (playwright.ElementHandle, bool) {
	for _, selector := range selectors {
		element, err := page.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		visible, err := element.IsVisible()
		if err != nil || !visible {
			continue
		}
		return element, true
	}
	return nil, false
}

// AnyVisible reports whether any of the selectors matches a visible element.
func AnyVisible(page playwright.Page, selectors []string) bool {
	_, found := First(page, selectors)
	return found
}

// FillFirst fills the first visible element matched by the selectors and
// reports whether one was filled.
func FillFirst(page playwright.Page, selectors []string, value string) bool {
	element, found := First(page, selectors)
	if !found {
		return false
	}
	return element.Fill(value) == nil
}

// ClickFirst clicks the first visible element matched by the selectors and
// reports whether one was clicked. Disabled elements are skipped.
func ClickFirst(page playwright.Page, selectors []string) bool {
	for _, selector := range selectors {
		element, err := page.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		if visible, err := element.IsVisible(); err != nil || !visible {
			continue
		}
		if disabled, err := element.IsDisabled(); err == nil && disabled {
			continue
		}
		if element.Click() == nil {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the page content contains any of the phrases,
// case-insensitively.
func ContainsAny(page playwright.Page, phrases []string) bool {
	content, err := page.Content()
	if err != nil {
		return false
	}
	lowered := strings.ToLower(content)
	for _, phrase := range phrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Poll evaluates fn once per interval, at most ticks times, and reports
// whether fn returned true before the budget ran out. The first evaluation
// happens after one interval, so a budget of n ticks waits at most
// n*interval.
func Poll(interval time.Duration, ticks int, fn func() bool) bool {
	for i := 0; i < ticks; i++ {
		time.Sleep(interval)
		if fn() {
			return true
		}
	}
	return false
}
