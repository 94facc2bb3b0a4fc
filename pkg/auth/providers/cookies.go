package providers

import (
	"net/url"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// sessionKeywords is the generic allow-list applied when a provider's
// explicit cookie names miss.
var sessionKeywords = []string{"session", "auth", "token"}

// filterCookies applies the cookie extraction policy: keep cookies named in
// the provider's allow-list, everything on the provider's domains, and
// anything that looks session-bearing by name. If the policy yields
// nothing, fall back to every cookie on the page's current domain rather
// than returning an empty result for a run that succeeded.
func filterCookies(page playwright.Page, names, domains []string, log *logging.Logger) []types.SessionCookie {
	browserCookies, err := page.Context().Cookies()
	if err != nil {
		log.Errorf("failed to read cookies: %v", err)
		return nil
	}

	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		allowed[name] = true
	}

	var kept []types.SessionCookie
	for _, cookie := range browserCookies {
		if allowed[cookie.Name] || onDomain(cookie.Domain, domains) || sessionLike(cookie.Name) {
			kept = append(kept, toSessionCookie(cookie))
		}
	}
	if len(kept) == 0 {
		host := pageHost(page)
		for _, cookie := range browserCookies {
			if cookieOnHost(cookie.Domain, host) {
				kept = append(kept, toSessionCookie(cookie))
			}
		}
	}
	log.Infof("extracted %d session cookie(s)", len(kept))
	return kept
}

func pageHost(page playwright.Page) string {
	parsed, err := url.Parse(page.URL())
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// cookieOnHost reports whether a cookie's domain covers the given host,
// treating a leading dot as the usual subdomain wildcard.
func cookieOnHost(cookieDomain, host string) bool {
	if host == "" {
		return false
	}
	domain := strings.TrimPrefix(cookieDomain, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func onDomain(cookieDomain string, domains []string) bool {
	for _, domain := range domains {
		if strings.Contains(cookieDomain, domain) {
			return true
		}
	}
	return false
}

func sessionLike(name string) bool {
	lowered := strings.ToLower(name)
	for _, keyword := range sessionKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func toSessionCookie(cookie playwright.Cookie) types.SessionCookie {
	return types.SessionCookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Domain:   cookie.Domain,
		Path:     cookie.Path,
		Secure:   cookie.Secure,
		HTTPOnly: cookie.HttpOnly,
	}
}
