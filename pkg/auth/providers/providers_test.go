package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/captcha"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/oauth"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/otp"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/pagetest"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, _ := logging.NewLogger("providers-test")
	t.Cleanup(func() { log.Close() })
	return log
}

// stubTransport serves back-channel calls in-process.
type stubTransport struct {
	handler http.HandlerFunc
}

func (t stubTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handler(rec, r)
	return rec.Result(), nil
}

func testDeps(t *testing.T, handler http.HandlerFunc) Deps {
	t.Helper()
	log := testLogger(t)
	opts := captcha.Options{Interval: time.Millisecond, RemoteTimeout: 3, ManualTimeout: 3}
	otpOpts := otp.Options{Interval: time.Millisecond, ManualTimeout: 3, SettleTicks: 2}

	deps := Deps{
		Captcha: captcha.NewChain([]string{"remote", "manual"}, opts, log),
		OTP:     otp.NewChain([]string{"totp", "manual"}, otpOpts, log),
		OAuth:   oauth.Options{Interval: time.Millisecond, RedirectWait: 100},
		Log:     log,
	}
	if handler != nil {
		deps.HTTP = &http.Client{Transport: stubTransport{handler: handler}}
	}
	return deps
}

func TestSupportedProviders(t *testing.T) {
	supported := Supported()
	assert.Len(t, supported, 8)
	assert.Contains(t, supported, types.ProviderSlack)
	assert.Contains(t, supported, types.ProviderGoogle)

	for _, provider := range supported {
		strategy, err := New(provider, testDeps(t, nil))
		require.NoError(t, err)
		assert.Equal(t, provider, strategy.Provider())
	}

	_, err := New(types.Provider("geocities"), testDeps(t, nil))
	assert.Error(t, err)
}

func TestTableStrategyLoginFillsCredentials(t *testing.T) {
	page := pagetest.NewPage()
	email := page.AddElement(`input[name="login"]`, pagetest.NewElement())
	password := page.AddElement(`input[name="password"]`, pagetest.NewElement())
	submit := page.AddElement(`input[type="submit"]`, pagetest.NewElement())

	strategy, err := New(types.ProviderGitHub, testDeps(t, nil))
	require.NoError(t, err)

	req := &types.LoginRequest{
		Provider: types.ProviderGitHub,
		Email:    "dev@example.com",
		Password: "hunter2",
	}
	assert.True(t, strategy.Login(page, req))
	assert.Equal(t, []string{"https://github.com/login"}, page.Gotos())
	assert.Equal(t, []string{"dev@example.com"}, email.Fills())
	assert.Equal(t, []string{"hunter2"}, password.Fills())
	assert.GreaterOrEqual(t, submit.Clicks(), 1)
}

func TestTableStrategyLoginFailsWithoutEmailField(t *testing.T) {
	strategy, err := New(types.ProviderGitHub, testDeps(t, nil))
	require.NoError(t, err)

	req := &types.LoginRequest{Email: "dev@example.com", Password: "hunter2"}
	assert.False(t, strategy.Login(pagetest.NewPage(), req))
}

func TestTableStrategyOAuth2Unsupported(t *testing.T) {
	strategy, err := New(types.ProviderNotion, testDeps(t, nil))
	require.NoError(t, err)

	_, err = strategy.OAuth2Login(context.Background(), pagetest.NewPage(), &types.LoginRequest{})
	assert.Error(t, err)
}

func TestIsSuccessURLHeuristicWinsFirst(t *testing.T) {
	strategy, err := New(types.ProviderGoogle, testDeps(t, nil))
	require.NoError(t, err)

	page := pagetest.NewPage()
	page.SetURL("https://myaccount.google.com/home")
	// Even with an error banner, the earlier URL heuristic decides.
	page.SetContent(`<div class="error">stale banner</div>`)
	assert.True(t, strategy.IsSuccess(page))
}

func TestIsSuccessElementHeuristic(t *testing.T) {
	strategy, err := New(types.ProviderOkta, testDeps(t, nil))
	require.NoError(t, err)

	page := pagetest.NewPage()
	page.SetURL("https://acme.okta.com/app/home")
	page.AddElement(`[data-se="dashboard"]`, pagetest.NewElement())
	assert.True(t, strategy.IsSuccess(page))
}

func TestIsSuccessErrorScanTiebreak(t *testing.T) {
	strategy, err := New(types.ProviderGitHub, testDeps(t, nil))
	require.NoError(t, err)

	failed := pagetest.NewPage()
	failed.SetURL("https://github.com/session")
	failed.SetContent(`<html><body><div class="flash">Incorrect email or password</div></body></html>`)
	assert.False(t, strategy.IsSuccess(failed))

	banner := pagetest.NewPage()
	banner.SetURL("https://github.com/session")
	banner.SetContent(`<html><body><div class="alert-error">Something went wrong</div></body></html>`)
	assert.False(t, strategy.IsSuccess(banner))
}

func TestIsSuccessDefaultsToSuccessOnCleanPage(t *testing.T) {
	// Deliberate policy: a page with no recognizable indicators either
	// way counts as success.
	strategy, err := New(types.ProviderGitHub, testDeps(t, nil))
	require.NoError(t, err)

	page := pagetest.NewPage()
	page.SetURL("https://github.com/session")
	page.SetContent(`<html><body><p>redirecting</p></body></html>`)
	assert.True(t, strategy.IsSuccess(page))
}

func TestExtractCookiesAppliesAllowList(t *testing.T) {
	strategy, err := New(types.ProviderGoogle, testDeps(t, nil))
	require.NoError(t, err)

	page := pagetest.NewPage()
	page.Ctx.CookieList = []playwright.Cookie{
		{Name: "SID", Value: "v1", Domain: ".google.com", Path: "/", Secure: true, HttpOnly: true},
		{Name: "tracking_pixel", Value: "v2", Domain: ".ads.example.com", Path: "/"},
		{Name: "my_auth_state", Value: "v3", Domain: ".example.com", Path: "/"},
	}

	cookies := strategy.ExtractCookies(page)
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"SID", "my_auth_state"}, names)
}

func TestExtractCookiesFallbackStaysOnCurrentDomain(t *testing.T) {
	strategy, err := New(types.ProviderGoogle, testDeps(t, nil))
	require.NoError(t, err)

	page := pagetest.NewPage()
	page.SetURL("https://app.example.com/home")
	page.Ctx.CookieList = []playwright.Cookie{
		{Name: "obscure", Value: "v1", Domain: ".example.com", Path: "/"},
		{Name: "stray", Value: "v2", Domain: ".ads.net", Path: "/"},
	}

	cookies := strategy.ExtractCookies(page)
	require.Len(t, cookies, 1)
	assert.Equal(t, "obscure", cookies[0].Name)
}

func TestSlackLoginCeremony(t *testing.T) {
	page := pagetest.NewPage()
	email := page.AddElement(`input[type="email"]`, pagetest.NewElement())
	cont := page.AddElement(`button[data-qa="signin_email_button"]`, pagetest.NewElement())
	password := page.AddElement(`input[type="password"]`, pagetest.NewElement())
	submit := page.AddElement(`button[data-qa="signin_password_button"]`, pagetest.NewElement())

	strategy, err := New(types.ProviderSlack, testDeps(t, nil))
	require.NoError(t, err)

	req := &types.LoginRequest{
		Provider: types.ProviderSlack,
		Email:    "user@example.com",
		Password: "hunter2",
	}
	assert.True(t, strategy.Login(page, req))
	assert.Equal(t, []string{"https://slack.com/signin"}, page.Gotos())
	assert.Equal(t, []string{"user@example.com"}, email.Fills())
	assert.Equal(t, 1, cont.Clicks())
	assert.Equal(t, []string{"hunter2"}, password.Fills())
	assert.Equal(t, 1, submit.Clicks())
}

func TestSlackOAuth2LoginWithExistingSession(t *testing.T) {
	page := pagetest.NewPage()
	consent := page.AddElement(`button[data-qa="oauth_submit_button"]`, pagetest.NewElement())

	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "captured-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "access_token": "xoxb-1", "team": {"id": "T9"}}`))
	}

	strategy, err := New(types.ProviderSlack, testDeps(t, handler))
	require.NoError(t, err)

	go func() {
		time.Sleep(5 * time.Millisecond)
		page.SetURL("https://app.example.com/callback?code=captured-code")
	}()

	req := &types.LoginRequest{
		Provider:     types.ProviderSlack,
		Email:        "user@example.com",
		Mode:         types.ModeOAuth2,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "https://app.example.com/callback",
		Scopes:       []string{"channels:read"},
	}
	tokens, err := strategy.OAuth2Login(context.Background(), page, req)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-1", tokens.AccessToken)
	assert.Equal(t, "T9", tokens.TeamID)
	assert.Equal(t, 1, consent.Clicks())
}

func TestSlackOAuth2LoginDeniedConsentFails(t *testing.T) {
	page := pagetest.NewPage()
	page.AddElement(`button[data-qa="oauth_submit_button"]`, pagetest.NewElement())

	deps := testDeps(t, nil)
	deps.OAuth = oauth.Options{Interval: time.Millisecond, RedirectWait: 5}
	strategy := newSlackStrategy(deps)

	go func() {
		time.Sleep(2 * time.Millisecond)
		page.SetURL("https://app.example.com/callback?error=access_denied")
	}()

	req := &types.LoginRequest{
		Provider:    types.ProviderSlack,
		Email:       "user@example.com",
		Mode:        types.ModeOAuth2,
		ClientID:    "client-1",
		RedirectURI: "https://app.example.com/callback",
	}
	_, err := strategy.OAuth2Login(context.Background(), page, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestSlackIsSuccess(t *testing.T) {
	strategy, err := New(types.ProviderSlack, testDeps(t, nil))
	require.NoError(t, err)

	client := pagetest.NewPage()
	client.SetURL("https://app.slack.com/client/T9/C1")
	assert.True(t, strategy.IsSuccess(client))

	sidebar := pagetest.NewPage()
	sidebar.SetURL("https://acme.slack.com/")
	sidebar.AddElement(`[data-qa="channel_sidebar"]`, pagetest.NewElement())
	assert.True(t, strategy.IsSuccess(sidebar))

	failed := pagetest.NewPage()
	failed.SetURL("https://slack.com/signin")
	failed.SetContent(`<html><body><p class="error">Login failed</p></body></html>`)
	assert.False(t, strategy.IsSuccess(failed))
}
