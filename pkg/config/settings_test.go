package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.True(t, s.Headless)
	assert.Equal(t, "remote", s.BrowserProvider)
	assert.Equal(t, []string{"remote", "manual"}, s.SolverPreferences)
	assert.Equal(t, []string{"totp", "manual"}, s.OTPHandlerPreferences)
	assert.Equal(t, 120, s.ManualSolveTimeoutSecs)
	assert.Equal(t, 30, s.RedirectWaitTimeoutSecs)
	assert.Equal(t, "memory", s.StorageType)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", s.APIAddr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
headless: false
browser_provider: local
captcha_solver_preferences: [manual, noop]
slack_client_id: file-client
session_timeout_minutes: 15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.False(t, s.Headless)
	assert.Equal(t, "local", s.BrowserProvider)
	assert.Equal(t, []string{"manual", "noop"}, s.SolverPreferences)
	assert.Equal(t, "file-client", s.SlackClientID)
	assert.Equal(t, 15, s.SessionTimeoutMinutes)
	// Untouched keys keep defaults.
	assert.Equal(t, 60, s.RemoteSolveTimeoutSecs)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headless: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEADLESS", "false")
	t.Setenv("BROWSER_WS_ENDPOINT", "wss://connect.example.com?apiKey=k")
	t.Setenv("CAPTCHA_SOLVER_PREFERENCES", "noop, manual")
	t.Setenv("SLACK_SCOPES", "chat:write,team:read")
	t.Setenv("SESSION_TIMEOUT_MINUTES", "5")

	s, err := Load("")
	require.NoError(t, err)

	assert.False(t, s.Headless)
	assert.Equal(t, "wss://connect.example.com?apiKey=k", s.BrowserWSEndpoint)
	assert.Equal(t, []string{"noop", "manual"}, s.SolverPreferences)
	assert.Equal(t, []string{"chat:write", "team:read"}, s.SlackScopes)
	assert.Equal(t, 5, s.SessionTimeoutMinutes)
}
