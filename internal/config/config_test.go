package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"GHDATA_API_URL", "GHDATA_API_TOKEN", "GITHUB_TOKEN", "REPO_HEALTH_LISTEN", "REPO_HEALTH_TIMEOUT", "REPO_HEALTH_CONCURRENCY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/", cfg.APIURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.Concurrency)
	assert.Empty(t, cfg.GitHubToken)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("GHDATA_API_URL", "https://ghdata.example.com/root")
	t.Setenv("GHDATA_API_TOKEN", "api-token")
	t.Setenv("GITHUB_TOKEN", "token")
	t.Setenv("REPO_HEALTH_LISTEN", ":9090")
	t.Setenv("REPO_HEALTH_TIMEOUT", "5")
	t.Setenv("REPO_HEALTH_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://ghdata.example.com/root/", cfg.APIURL)
	assert.Equal(t, "api-token", cfg.APIToken)
	assert.Equal(t, "token", cfg.GitHubToken)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("GHDATA_API_URL")
	os.Unsetenv("REPO_HEALTH_TIMEOUT")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GHDATA_API_URL=http://dotenv:5000\nREPO_HEALTH_TIMEOUT=1m\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() {
		os.Unsetenv("GHDATA_API_URL")
		os.Unsetenv("REPO_HEALTH_TIMEOUT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:5000/", cfg.APIURL)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("REPO_HEALTH_TIMEOUT", "soon")
	t.Setenv("REPO_HEALTH_CONCURRENCY", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.Concurrency)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{name: "valid", cfg: Config{APIURL: "http://x/"}},
		{name: "empty api url", cfg: Config{APIURL: "/"}, expectError: true},
		{name: "negative timeout", cfg: Config{APIURL: "http://x/", Timeout: -time.Second}, expectError: true},
		{name: "negative concurrency", cfg: Config{APIURL: "http://x/", Concurrency: -1}, expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
