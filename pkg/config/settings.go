// Package config loads the process-wide settings for the authentication
// service. Settings come from an optional YAML file with environment-variable
// overrides; the resulting struct is constructed once at startup and passed
// into the orchestrator and substrate constructors. There is no ambient
// global state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds all tunables for the service.
type Settings struct {
	// Browser substrate
	Headless          bool   `yaml:"headless"`
	BrowserProvider   string `yaml:"browser_provider"` // "remote" or "local"
	BrowserWSEndpoint string `yaml:"browser_ws_endpoint"`
	UserAgent         string `yaml:"user_agent"`

	// Challenge solving
	SolverPreferences        []string `yaml:"captcha_solver_preferences"`
	RemoteSolveTimeoutSecs   int      `yaml:"remote_solve_timeout_seconds"`
	ManualSolveTimeoutSecs   int      `yaml:"manual_solve_timeout_seconds"`
	OTPHandlerPreferences    []string `yaml:"twofa_handler_preferences"`
	OTPTimeoutSecs           int      `yaml:"otp_timeout_seconds"`
	RedirectWaitTimeoutSecs  int      `yaml:"redirect_wait_timeout_seconds"`
	NavigationTimeoutMillis  float64  `yaml:"navigation_timeout_ms"`

	// HTTP surface
	APIAddr string `yaml:"api_addr"`

	// Slack OAuth2 defaults, used when the request omits them
	SlackClientID     string   `yaml:"slack_client_id"`
	SlackClientSecret string   `yaml:"slack_client_secret"`
	SlackRedirectURI  string   `yaml:"slack_redirect_uri"`
	SlackScopes       []string `yaml:"slack_scopes"`

	// Session storage
	StorageType           string `yaml:"storage_type"` // "memory" or "file"
	StoragePath           string `yaml:"storage_path"`
	SessionTimeoutMinutes int    `yaml:"session_timeout_minutes"`
}

// Defaults returns the built-in settings, matching a headless deployment
// with a remote substrate preferred and local fallback.
func Defaults() *Settings {
	return &Settings{
		Headless:                true,
		BrowserProvider:         "remote",
		SolverPreferences:       []string{"remote", "manual"},
		RemoteSolveTimeoutSecs:  60,
		ManualSolveTimeoutSecs:  120,
		OTPHandlerPreferences:   []string{"totp", "manual"},
		OTPTimeoutSecs:          120,
		RedirectWaitTimeoutSecs: 30,
		NavigationTimeoutMillis: 30000,
		APIAddr:                 ":8000",
		SlackRedirectURI:        "http://localhost:8000/auth/slack/callback",
		SlackScopes:             []string{"channels:read", "chat:write", "users:read", "team:read"},
		StorageType:             "memory",
		SessionTimeoutMinutes:   60,
	}
}

// Load builds Settings from defaults, an optional YAML file, and finally
// environment overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	s.applyEnv()
	return s, nil
}

// applyEnv overlays environment variables onto the settings. Variable names
// follow the service's deployment convention (HEADLESS, BROWSER_WS_ENDPOINT,
// SLACK_CLIENT_ID, ...).
func (s *Settings) applyEnv() {
	envBool(&s.Headless, "HEADLESS")
	envString(&s.BrowserProvider, "BROWSER_PROVIDER")
	envString(&s.BrowserWSEndpoint, "BROWSER_WS_ENDPOINT")
	envString(&s.UserAgent, "BROWSER_USER_AGENT")
	envList(&s.SolverPreferences, "CAPTCHA_SOLVER_PREFERENCES")
	envInt(&s.RemoteSolveTimeoutSecs, "CAPTCHA_REMOTE_TIMEOUT_SECONDS")
	envInt(&s.ManualSolveTimeoutSecs, "CAPTCHA_MANUAL_TIMEOUT_SECONDS")
	envList(&s.OTPHandlerPreferences, "TWOFA_HANDLER_PREFERENCES")
	envInt(&s.OTPTimeoutSecs, "TWOFA_TIMEOUT_SECONDS")
	envString(&s.APIAddr, "API_ADDR")
	envString(&s.SlackClientID, "SLACK_CLIENT_ID")
	envString(&s.SlackClientSecret, "SLACK_CLIENT_SECRET")
	envString(&s.SlackRedirectURI, "SLACK_REDIRECT_URI")
	envList(&s.SlackScopes, "SLACK_SCOPES")
	envString(&s.StorageType, "STORAGE_TYPE")
	envString(&s.StoragePath, "STORAGE_PATH")
	envInt(&s.SessionTimeoutMinutes, "SESSION_TIMEOUT_MINUTES")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		*dst = out
	}
}
