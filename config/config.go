// Package config resolves DevDuo settings from a JSON file, a .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/subosito/gotenv"

	"devduo/duo"
)

const (
	DefaultPath      = "devduo.json"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
	DefaultOutput    = "devduo_result.json"
	DefaultAddr      = ":8080"
)

var ErrMissingAPIKey = errors.New("api key missing")

// envKeys maps fixed environment variables to config keys. The API key
// variable is configurable and handled separately.
var envKeys = map[string]string{
	"OPENAI_MODEL":      "model",
	"OPENAI_BASE_URL":   "base_url",
	"DEVDUO_MAX_ROUNDS": "max_rounds",
	"DEVDUO_DELAY":      "delay",
}

// Config holds everything a run needs. The API key is resolved from the
// environment variable named by APIKeyEnv and never read from the file.
// Durations are written as strings like "1.5s".
type Config struct {
	Model       string        `koanf:"model"`
	APIKeyEnv   string        `koanf:"api_key_env"`
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	MaxRounds   int           `koanf:"max_rounds"`
	Delay       time.Duration `koanf:"delay"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxRetries  *int          `koanf:"max_retries"`
	ServerAddr  string        `koanf:"server_addr"`
	Output      string        `koanf:"output"`
}

// Default returns the built-in settings.
func Default() Config {
	retries := 2
	return Config{
		Model:       duo.FallbackModel,
		APIKeyEnv:   DefaultAPIKeyEnv,
		MaxRounds:   duo.DefaultMaxRounds,
		Delay:       time.Second,
		Temperature: 0.7,
		MaxTokens:   1500,
		Timeout:     60 * time.Second,
		MaxRetries:  &retries,
		ServerAddr:  DefaultAddr,
		Output:      DefaultOutput,
	}
}

// Load reads .env (if present), then the JSON file at path (if present), then
// applies environment overrides on top of the defaults. A missing file at the
// default path is not an error; a missing explicit path is.
//
// Precedence (highest first): environment, JSON file, defaults.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(data), json.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}
	// 文件里的 api_key 一律忽略。
	k.Delete("api_key")

	keyEnv := k.String("api_key_env")
	if keyEnv == "" {
		keyEnv = DefaultAPIKeyEnv
	}
	if err := k.Load(env.ProviderWithValue("", ".", func(name, value string) (string, interface{}) {
		if name == keyEnv {
			return "api_key", value
		}
		key, ok := envKeys[name]
		if !ok || value == "" {
			return "", nil
		}
		return key, value
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	vars, err := gotenv.StrictParse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	// 已存在的环境变量优先。
	for k, v := range vars {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports settings that make a collaboration impossible.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: set %s in your environment or .env file", ErrMissingAPIKey, c.APIKeyEnv)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("%w: got %d", duo.ErrInvalidRounds, c.MaxRounds)
	}
	return nil
}

// LLMSettings converts the config into settings for duo.NewOpenAILLM.
func (c Config) LLMSettings() *duo.LLMSettings {
	s := &duo.LLMSettings{
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Timeout:     c.Timeout,
	}
	if c.MaxRetries != nil {
		s.MaxRetries = *c.MaxRetries
	}
	return s
}
