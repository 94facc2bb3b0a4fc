package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// tableStrategy drives a provider entirely from its static heuristic
// profile. It covers the common shape: navigate, enter email, enter
// password (possibly on a second screen), submit, and read the landing
// page.
type tableStrategy struct {
	provider types.Provider
	profile  profile
	deps     Deps
}

func (s *tableStrategy) Provider() types.Provider { return s.provider }

func (s *tableStrategy) Modes() []types.AuthMode {
	return []types.AuthMode{types.ModePassword}
}

func (s *tableStrategy) Login(page playwright.Page, req *types.LoginRequest) bool {
	if _, err := page.Goto(s.profile.LoginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		s.deps.Log.Errorf("%s: navigation to %s failed: %v", s.provider, s.profile.LoginURL, err)
		return false
	}

	if _, err := page.WaitForSelector(s.profile.EmailSelectors[0]); err != nil {
		s.deps.Log.Errorf("%s: email field never appeared", s.provider)
		return false
	}
	if !probe.FillFirst(page, s.profile.EmailSelectors, req.Email) {
		s.deps.Log.Errorf("%s: could not fill email", s.provider)
		return false
	}

	// Providers with a two-screen flow need the email submitted before
	// the password field exists; a single-screen flow tolerates the
	// extra click.
	if !probe.AnyVisible(page, s.profile.PasswordSelectors) {
		probe.ClickFirst(page, s.profile.SubmitSelectors)
	}

	if _, err := page.WaitForSelector(s.profile.PasswordSelectors[0]); err != nil {
		s.deps.Log.Errorf("%s: password field never appeared", s.provider)
		return false
	}
	if !probe.FillFirst(page, s.profile.PasswordSelectors, req.Password) {
		s.deps.Log.Errorf("%s: could not fill password", s.provider)
		return false
	}
	if !probe.ClickFirst(page, s.profile.SubmitSelectors) {
		// Some forms only submit on Enter.
		if element, found := probe.First(page, s.profile.PasswordSelectors); found {
			if err := element.Press("Enter"); err != nil {
				s.deps.Log.Errorf("%s: could not submit credentials", s.provider)
				return false
			}
		}
	}
	return true
}

func (s *tableStrategy) OAuth2Login(ctx context.Context, page playwright.Page, req *types.LoginRequest) (*types.OAuthTokens, error) {
	return nil, fmt.Errorf("provider %s does not support oauth2", s.provider)
}

// IsSuccess walks the profile's heuristics in order, first match wins.
// With no match the generic error scan is the tiebreak: finding an error
// indicator fails the attempt, finding nothing defaults to success.
func (s *tableStrategy) IsSuccess(page playwright.Page) bool {
	current := page.URL()
	for _, part := range s.profile.SuccessURLParts {
		if strings.Contains(current, part) {
			return true
		}
	}
	if probe.AnyVisible(page, s.profile.SuccessSelects) {
		return true
	}
	if len(s.profile.SuccessTexts) > 0 && probe.ContainsAny(page, s.profile.SuccessTexts) {
		return true
	}
	return !hasErrorIndicators(page)
}

func (s *tableStrategy) ExtractCookies(page playwright.Page) []types.SessionCookie {
	return filterCookies(page, s.profile.CookieNames, s.profile.CookieDomains, s.deps.Log)
}
