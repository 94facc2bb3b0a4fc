// Package providers holds one authentication strategy per identity
// provider. A strategy owns navigation, credential entry, success
// detection, and cookie-extraction policy; the long selector catalogs live
// in static per-provider tables, not code branches. Slack carries a full
// custom flow with interleaved challenge and passcode steps; the remaining
// providers are table-driven.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/captcha"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/oauth"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/otp"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// Strategy drives one provider's sign-in ceremony.
type Strategy interface {
	Provider() types.Provider

	// Modes lists the authentication modes this provider supports.
	Modes() []types.AuthMode

	// Login performs navigation, credential entry, and submission. The
	// boolean reports whether the flow could proceed; it says nothing
	// about whether the provider accepted the credentials.
	Login(page playwright.Page, req *types.LoginRequest) bool

	// OAuth2Login runs the full authorization-code flow and returns
	// tokens. Providers without an OAuth2 surface return an error.
	OAuth2Login(ctx context.Context, page playwright.Page, req *types.LoginRequest) (*types.OAuthTokens, error)

	// IsSuccess inspects the post-flow page state. First matching
	// heuristic wins; with no match, a generic error-text scan is the
	// tiebreak and the default is success.
	IsSuccess(page playwright.Page) bool

	// ExtractCookies applies the provider's cookie filter policy.
	ExtractCookies(page playwright.Page) []types.SessionCookie
}

// Deps carries the collaborators a strategy composes: the challenge and
// passcode chains, the back-channel HTTP client, and redirect-wait budgets.
type Deps struct {
	Captcha *captcha.Chain
	OTP     *otp.Chain
	HTTP    *http.Client
	OAuth   oauth.Options
	Log     *logging.Logger
}

// New builds the strategy for a provider.
func New(provider types.Provider, deps Deps) (Strategy, error) {
	if provider == types.ProviderSlack {
		return newSlackStrategy(deps), nil
	}
	profile, ok := profiles[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
	return &tableStrategy{provider: provider, profile: profile, deps: deps}, nil
}

// Supported returns every provider with a registered strategy, sorted.
func Supported() []types.Provider {
	supported := []types.Provider{types.ProviderSlack}
	for provider := range profiles {
		supported = append(supported, provider)
	}
	sort.Slice(supported, func(i, j int) bool { return supported[i] < supported[j] })
	return supported
}
