// Package auth hosts the authentication orchestrator: the top-level state
// machine that sequences provider login, challenge clearing, passcode
// handling, success checking, and cookie/token extraction over one browser
// page. All runtime failures surface as a structured result; the only
// returned error is a configuration-invariant violation detected before any
// browser interaction.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/captcha"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/oauth"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/otp"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/providers"
	"github.com/trungleviet-agilityio/playwright-training/pkg/browser"
	"github.com/trungleviet-agilityio/playwright-training/pkg/config"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// PageRunner provides a browser page inside a scoped call. Satisfied by
// browser.Manager.
type PageRunner interface {
	WithPage(opts browser.PageOptions, fn func(playwright.Page) error) error
}

// Orchestrator runs complete authentication attempts. It is stateless
// across attempts and safe for concurrent use: each attempt owns its page
// exclusively and the chains are rebuilt per call from the request's
// preferences.
type Orchestrator struct {
	settings *config.Settings
	runner   PageRunner
	http     *http.Client
	log      *logging.Logger

	// interval is the poll tick for all bounded waits.
	interval time.Duration
}

// NewOrchestrator wires an orchestrator against a page runner.
func NewOrchestrator(settings *config.Settings, runner PageRunner, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		settings: settings,
		runner:   runner,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
		interval: time.Second,
	}
}

// Authenticate drives one attempt through the full phase sequence. The
// returned error is non-nil only for configuration failures caught before
// any browser interaction; every runtime failure is reported through the
// result's success flag and message.
func (o *Orchestrator) Authenticate(ctx context.Context, req *types.LoginRequest) (*types.AuthResult, error) {
	// The caller's request is never mutated; defaults are applied to a
	// per-attempt copy.
	attempt := *req
	req = &attempt
	o.applyDefaults(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	solverPrefs := req.SolverPreference
	if len(solverPrefs) == 0 {
		solverPrefs = o.settings.SolverPreferences
	}

	headless := o.settings.Headless
	if req.Headless != nil {
		headless = *req.Headless
	}
	opts := browser.PageOptions{
		Provider:        req.BrowserProvider,
		Headless:        headless,
		UserAgent:       req.UserAgent,
		SolveChallenges: contains(solverPrefs, "remote"),
	}

	o.log.Infof("starting %s authentication for %s (%s mode)", req.Provider, req.Email, req.EffectiveMode())

	var result *types.AuthResult
	err := o.runner.WithPage(opts, func(page playwright.Page) error {
		result = o.run(ctx, page, req, solverPrefs)
		return nil
	})
	if err != nil {
		o.log.Errorf("browser substrate unavailable: %v", err)
		return types.Failure("browser substrate unavailable: %v", err), nil
	}
	return result, nil
}

// applyDefaults fills Slack OAuth2 parameters from settings when the
// request omits them.
func (o *Orchestrator) applyDefaults(req *types.LoginRequest) {
	if req.Provider != types.ProviderSlack {
		return
	}
	if req.ClientID == "" {
		req.ClientID = o.settings.SlackClientID
	}
	if req.ClientSecret == "" {
		req.ClientSecret = o.settings.SlackClientSecret
	}
	if req.RedirectURI == "" {
		req.RedirectURI = o.settings.SlackRedirectURI
	}
	if len(req.Scopes) == 0 {
		req.Scopes = o.settings.SlackScopes
	}
}

// run is the state machine body. Phases execute strictly in order; every
// failure converts to an absorbing failed result.
func (o *Orchestrator) run(ctx context.Context, page playwright.Page, req *types.LoginRequest, solverPrefs []string) *types.AuthResult {
	captchaChain := captcha.NewChain(solverPrefs, captcha.Options{
		Interval:      o.interval,
		RemoteTimeout: o.settings.RemoteSolveTimeoutSecs,
		ManualTimeout: o.settings.ManualSolveTimeoutSecs,
	}, o.log)
	otpChain := otp.NewChain(o.settings.OTPHandlerPreferences, otp.Options{
		Interval:      o.interval,
		ManualTimeout: o.settings.OTPTimeoutSecs,
	}, o.log)

	strategy, err := providers.New(req.Provider, providers.Deps{
		Captcha: captchaChain,
		OTP:     otpChain,
		HTTP:    o.http,
		OAuth: oauth.Options{
			Interval:     o.interval,
			RedirectWait: o.settings.RedirectWaitTimeoutSecs,
		},
		Log: o.log,
	})
	if err != nil {
		return types.Failure("unsupported provider %q", req.Provider)
	}

	// MODE_DISPATCH
	var tokens *types.OAuthTokens
	switch req.EffectiveMode() {
	case types.ModeOAuth2:
		tokens, err = strategy.OAuth2Login(ctx, page, req)
		if err != nil || tokens == nil || tokens.AccessToken == "" {
			o.log.Errorf("oauth2 flow failed: %v", err)
			return types.Failure("OAuth2 authentication failed - no valid tokens")
		}
	case types.ModeHybrid:
		// Single fallback: OAuth2 is attempted at most once.
		tokens, err = strategy.OAuth2Login(ctx, page, req)
		if err != nil || tokens == nil || tokens.AccessToken == "" {
			o.log.Warnf("oauth2 flow failed (%v), falling back to password", err)
			tokens = nil
			if !strategy.Login(page, req) {
				return types.Failure("login flow could not proceed for %s", req.Provider)
			}
		}
	default:
		if !strategy.Login(page, req) {
			return types.Failure("login flow could not proceed for %s", req.Provider)
		}
	}

	// CHALLENGE
	if !captchaChain.Clear(page) {
		return types.Failure("CAPTCHA could not be solved")
	}

	// OTP
	if !otpChain.Complete(page, req) {
		return types.Failure("2FA could not be completed")
	}

	// SUCCESS_CHECK
	if !strategy.IsSuccess(page) {
		return types.Failure("login unsuccessful for %s", req.Provider)
	}

	// EXTRACT
	cookies := strategy.ExtractCookies(page)
	if len(cookies) == 0 && tokens == nil {
		return types.Failure("no session cookies or tokens captured")
	}

	o.log.Infof("authentication successful for %s (%d cookies)", req.Provider, len(cookies))
	return &types.AuthResult{
		Success: true,
		Message: "authentication successful",
		Cookies: cookies,
		Tokens:  tokens,
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
