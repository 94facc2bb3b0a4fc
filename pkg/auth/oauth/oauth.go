// Package oauth implements the authorization-code leg of an OAuth2 flow:
// building the authorize URL, clicking through the consent affordance,
// capturing the code off the redirect, and exchanging it for tokens over
// the back channel. The functions are side-effect-scoped helpers, not a
// chain; provider strategies compose them with the login flow.
package oauth

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// Options bound the redirect wait. Interval is the poll tick and
// RedirectWait the tick count.
type Options struct {
	Interval     time.Duration
	RedirectWait int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.RedirectWait <= 0 {
		o.RedirectWait = 30
	}
	return o
}

// BuildAuthorizeURL assembles the provider's authorization URL from the
// request. Scopes are comma-joined; workspace hint and anti-CSRF state are
// attached only when present.
func BuildAuthorizeURL(authorizeURL string, req *types.LoginRequest) (string, error) {
	if req.ClientID == "" {
		return "", fmt.Errorf("client_id is required to build an authorize url")
	}
	if authorizeURL == "" {
		return "", fmt.Errorf("provider has no authorize url")
	}

	params := url.Values{}
	params.Set("client_id", req.ClientID)
	params.Set("redirect_uri", req.RedirectURI)
	params.Set("scope", strings.Join(req.Scopes, ","))
	params.Set("response_type", "code")
	if req.TeamID != "" {
		params.Set("team", req.TeamID)
	}
	if req.State != "" {
		params.Set("state", req.State)
	}
	return authorizeURL + "?" + params.Encode(), nil
}

// consentSelectors locate the single "allow" affordance on a provider's
// authorization page.
var consentSelectors = []string{
	`button[data-qa="oauth_submit_button"]`,
	`button[name="authorize"]`,
	`button[type="submit"]`,
}

// ClickConsent clicks the consent affordance if one is present. Absence is
// not an error: a previously-authorized app skips the consent page
// entirely.
func ClickConsent(page playwright.Page) bool {
	return probe.ClickFirst(page, consentSelectors)
}

// CaptureCode waits for the page to land on the redirect target and parses
// the authorization code out of the query string, falling back to the
// fragment. An explicit error parameter from the provider is fatal, as is
// exhausting the wait budget.
func CaptureCode(page playwright.Page, redirectURI string, opts Options) (string, error) {
	opts = opts.withDefaults()

	arrived := probe.Poll(opts.Interval, opts.RedirectWait, func() bool {
		current := page.URL()
		return (redirectURI != "" && strings.HasPrefix(current, redirectURI)) ||
			strings.Contains(current, "code=") ||
			strings.Contains(current, "error=")
	})
	if !arrived {
		return "", fmt.Errorf("no redirect to %s within %d ticks", redirectURI, opts.RedirectWait)
	}
	return parseCode(page.URL())
}

// parseCode extracts the authorization code (or provider error) from a
// redirect URL, checking the query string first and the fragment second.
func parseCode(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("unparseable redirect url %q: %w", rawURL, err)
	}

	for _, params := range []url.Values{parsed.Query(), parseFragment(parsed.Fragment)} {
		if errCode := params.Get("error"); errCode != "" {
			return "", fmt.Errorf("authorization denied: %s", errCode)
		}
		if code := params.Get("code"); code != "" {
			return code, nil
		}
	}
	return "", fmt.Errorf("no authorization code in redirect url %q", rawURL)
}

func parseFragment(fragment string) url.Values {
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return url.Values{}
	}
	return values
}
