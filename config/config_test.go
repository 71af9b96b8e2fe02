package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devduo/duo"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, duo.FallbackModel, cfg.Model)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, DefaultOutput, cfg.Output)
	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, 2, *cfg.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.json")
	writeFile(t, path, `{
		"model": "gpt-4o",
		"api_key_env": "DUO_KEY",
		"max_rounds": 5,
		"delay": "250ms",
		"timeout": "30s",
		"api_key": "sk-from-file",
		"max_retries": 0,
		"base_url": "https://gateway.example/v1/"
	}`)
	t.Setenv("DUO_KEY", "sk-custom")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("DEVDUO_MAX_ROUNDS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "sk-custom", cfg.APIKey)
	assert.Equal(t, 2, cfg.MaxRounds)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	s := cfg.LLMSettings()
	assert.Equal(t, 0, s.MaxRetries)
	assert.Equal(t, "https://gateway.example/v1/", s.BaseURL)
	assert.Equal(t, 30*time.Second, s.Timeout)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "OPENAI_API_KEY=sk-dotenv\nOPENAI_MODEL=gpt-4\n")
	t.Setenv("OPENAI_API_KEY", "sk-real")
	// t.Setenv 注册清理，之后 Unsetenv 让 .env 生效。
	t.Setenv("OPENAI_MODEL", "")
	require.NoError(t, os.Unsetenv("OPENAI_MODEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-real", cfg.APIKey)
	assert.Equal(t, "gpt-4", cfg.Model)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"delay": "soon"}`)
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("DEVDUO_DELAY", "later")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("DEVDUO_DELAY", "")
	t.Setenv("DEVDUO_MAX_ROUNDS", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadIgnoresFileAPIKey(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "devduo.json")
	writeFile(t, path, `{"api_key": "sk-from-file"}`)
	t.Setenv("OPENAI_API_KEY", "")
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.APIKey = "sk"
	cfg.MaxRounds = 0
	assert.ErrorIs(t, cfg.Validate(), duo.ErrInvalidRounds)
}
