package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// Exchanger performs the back-channel token exchange for one provider.
type Exchanger struct {
	client   *http.Client
	tokenURL string
	log      *logging.Logger

	// now stamps token expiry; swappable in tests.
	now func() time.Time
}

// NewExchanger wires an exchanger against the provider's token endpoint.
// A nil client gets a 30-second default.
func NewExchanger(client *http.Client, tokenURL string, log *logging.Logger) *Exchanger {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Exchanger{client: client, tokenURL: tokenURL, log: log, now: time.Now}
}

// Exchange trades an authorization code for tokens. Any non-2xx response
// or explicit provider-level error field is fatal for the attempt; there
// are no retries. Absolute expiry is computed once, here, from the
// response's relative duration.
func (e *Exchanger) Exchange(ctx context.Context, req *types.LoginRequest, code string) (*types.OAuthTokens, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is empty")
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		return nil, fmt.Errorf("client_id and client_secret are required for token exchange")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", req.RedirectURI)
	form.Set("client_id", req.ClientID)
	form.Set("client_secret", req.ClientSecret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	e.log.Infof("exchanging authorization code at %s", e.tokenURL)
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return e.parseTokens(body)
}

// parseTokens maps the provider's JSON response onto OAuthTokens. A
// response carrying an explicit ok=false flag, or no access token at all,
// is an error.
func (e *Exchanger) parseTokens(body []byte) (*types.OAuthTokens, error) {
	parsed := gjson.ParseBytes(body)

	if ok := parsed.Get("ok"); ok.Exists() && !ok.Bool() {
		providerErr := parsed.Get("error").String()
		if providerErr == "" {
			providerErr = "unknown error"
		}
		return nil, fmt.Errorf("token exchange rejected: %s", providerErr)
	}

	accessToken := parsed.Get("access_token").String()
	if accessToken == "" {
		return nil, fmt.Errorf("no access token in exchange response")
	}

	tokens := &types.OAuthTokens{
		AccessToken:  accessToken,
		RefreshToken: parsed.Get("refresh_token").String(),
		TokenType:    parsed.Get("token_type").String(),
		Scope:        parsed.Get("scope").String(),
		TeamID:       parsed.Get("team.id").String(),
		TeamName:     parsed.Get("team.name").String(),
		UserID:       parsed.Get("authed_user.id").String(),
		BotUserID:    parsed.Get("bot_user_id").String(),
		AppID:        parsed.Get("app_id").String(),
	}
	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	tokens.SetExpiry(parsed.Get("expires_in").Int(), e.now())

	e.log.Infof("token exchange successful (team %s)", tokens.TeamID)
	return tokens, nil
}
