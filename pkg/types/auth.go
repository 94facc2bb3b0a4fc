// Package types defines the request, result, and token models shared by the
// authentication orchestrator, provider strategies, and the HTTP surface.
package types

import (
	"fmt"
	"time"
)

// Provider identifies a supported identity provider.
type Provider string

const (
	ProviderSlack        Provider = "slack"
	ProviderGoogle       Provider = "google"
	ProviderGitHub       Provider = "github"
	ProviderMicrosoft365 Provider = "microsoft_365"
	ProviderOkta         Provider = "okta"
	ProviderAtlassian    Provider = "atlassian"
	ProviderNotion       Provider = "notion"
	ProviderSalesforce   Provider = "salesforce"
)

// AuthMode selects how an attempt authenticates.
type AuthMode string

const (
	// ModePassword drives the provider's credential form directly.
	ModePassword AuthMode = "password"

	// ModeOAuth2 runs the full authorization-code flow and exchanges the
	// code for tokens over the back channel.
	ModeOAuth2 AuthMode = "oauth2"

	// ModeHybrid attempts OAuth2 once and falls back to the password flow.
	ModeHybrid AuthMode = "hybrid"
)

// LoginRequest is the immutable input for one authentication attempt.
type LoginRequest struct {
	Provider Provider `json:"provider" yaml:"provider"`
	Email    string   `json:"email" yaml:"email"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	Mode     AuthMode `json:"auth_mode,omitempty" yaml:"auth_mode,omitempty"`

	// OAuth2 configuration
	ClientID     string   `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	RedirectURI  string   `json:"redirect_uri,omitempty" yaml:"redirect_uri,omitempty"`
	Scopes       []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	State        string   `json:"state,omitempty" yaml:"state,omitempty"`
	TeamID       string   `json:"team_id,omitempty" yaml:"team_id,omitempty"`

	// One-time-passcode configuration. OTPCode is a literal code entered
	// as-is; TOTPSecret derives the current code deterministically.
	OTPCode    string `json:"otp_code,omitempty" yaml:"otp_code,omitempty"`
	TOTPSecret string `json:"totp_secret,omitempty" yaml:"totp_secret,omitempty"`

	// Substrate and solver preference overrides. Headless is a tri-state:
	// nil inherits the configured setting, an explicit value wins either
	// way.
	Headless         *bool    `json:"headless,omitempty" yaml:"headless,omitempty"`
	BrowserProvider  string   `json:"browser_provider,omitempty" yaml:"browser_provider,omitempty"`
	SolverPreference []string `json:"solver_preference,omitempty" yaml:"solver_preference,omitempty"`
	UserAgent        string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// Validate checks the required-field combinations for the selected mode.
// It must be called before any browser interaction begins; a non-nil error
// is a configuration failure, never a runtime one.
func (r *LoginRequest) Validate() error {
	if r.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	switch r.Mode {
	case "", ModePassword:
		if r.Password == "" {
			return fmt.Errorf("password is required for password mode")
		}
	case ModeOAuth2:
		if r.ClientID == "" {
			return fmt.Errorf("client_id is required for oauth2 mode")
		}
		if r.RedirectURI == "" {
			return fmt.Errorf("redirect_uri is required for oauth2 mode")
		}
	case ModeHybrid:
		if r.ClientID == "" {
			return fmt.Errorf("client_id is required for hybrid mode")
		}
		if r.RedirectURI == "" {
			return fmt.Errorf("redirect_uri is required for hybrid mode")
		}
		if r.Password == "" {
			return fmt.Errorf("password is required for hybrid mode fallback")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", r.Mode)
	}
	return nil
}

// EffectiveMode returns the requested mode, defaulting to password.
func (r *LoginRequest) EffectiveMode() AuthMode {
	if r.Mode == "" {
		return ModePassword
	}
	return r.Mode
}

// SessionCookie is a single browser cookie captured from a successful run.
type SessionCookie struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Domain   string `json:"domain" yaml:"domain"`
	Path     string `json:"path" yaml:"path"`
	Secure   bool   `json:"secure" yaml:"secure"`
	HTTPOnly bool   `json:"http_only" yaml:"http_only"`
}

// OAuthTokens holds the result of a token exchange. ExpiresAt is computed
// once, when the tokens are received, and never recomputed.
type OAuthTokens struct {
	AccessToken  string    `json:"access_token" yaml:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Scope        string    `json:"scope,omitempty" yaml:"scope,omitempty"`

	// Provider-specific metadata
	TeamID    string `json:"team_id,omitempty" yaml:"team_id,omitempty"`
	TeamName  string `json:"team_name,omitempty" yaml:"team_name,omitempty"`
	UserID    string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	BotUserID string `json:"bot_user_id,omitempty" yaml:"bot_user_id,omitempty"`
	AppID     string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
}

// SetExpiry stamps the absolute expiry from a relative duration in seconds.
func (t *OAuthTokens) SetExpiry(expiresIn int64, issuedAt time.Time) {
	t.ExpiresIn = expiresIn
	if expiresIn > 0 {
		t.ExpiresAt = issuedAt.Add(time.Duration(expiresIn) * time.Second)
	}
}

// AuthResult is the sole return contract of the orchestrator. Failures are
// carried in Success/Message; no partial cookie or token sets accompany a
// failed result.
type AuthResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Cookies []SessionCookie `json:"cookies,omitempty"`
	Tokens  *OAuthTokens    `json:"tokens,omitempty"`
}

// Failure builds a failed result with no cookies or tokens attached.
func Failure(format string, args ...interface{}) *AuthResult {
	return &AuthResult{Success: false, Message: fmt.Sprintf(format, args...)}
}
