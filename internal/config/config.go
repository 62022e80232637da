package config

import (
	"strings"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Log       LogConfig
	LLM       LLMConfig
	Providers ProvidersConfig
	Page      PageConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

// LLMConfig holds the default provider selection. Values saved through the
// control panel take precedence over these.
type LLMConfig struct {
	Provider string
	APIKey   string
	JSONMode bool
}

type ProvidersConfig struct {
	OpenAI Endpoint
	XAI    Endpoint
}

// Endpoint is an OpenAI-compatible chat completions endpoint.
type Endpoint struct {
	BaseURL string
	Model   string
}

type PageConfig struct {
	FetchTimeout string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		Providers: ProvidersConfig{
			OpenAI: Endpoint{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
			XAI: Endpoint{
				BaseURL: "https://api.x.ai/v1",
				Model:   "grok-beta",
			},
		},
		Page: PageConfig{
			FetchTimeout: "30s",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.jobfill.app) and the
// API key falls back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/jobfill/config.json
// and the API key falls back to $XDG_DATA_HOME/jobfill/secrets.json.
//
// Environment variables (JOBFILL_*) override backend values on all platforms.
// A missing API key is not an error here: it may still be saved through the
// control panel, and requests without one are refused later.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), NewKeychain())
}

// keychain abstracts secret lookups for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b Backend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)

	if cfg.LLM.APIKey == "" {
		if key, err := kc.Get(keychainService, "api_key"); err == nil && key != "" {
			cfg.LLM.APIKey = strings.TrimSpace(key)
		}
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return cfg, nil
}

// MissingAPIKeyHint describes where an API key can be supplied.
func MissingAPIKeyHint() string {
	return "set it with `jobfill settings set-key`, the JOBFILL_API_KEY environment variable" + apiKeyHint()
}

// Endpoint returns the configured endpoint for a provider name.
func (c Config) Endpoint(provider string) (Endpoint, bool) {
	switch strings.ToLower(provider) {
	case "openai":
		return c.Providers.OpenAI, true
	case "xai":
		return c.Providers.XAI, true
	}
	return Endpoint{}, false
}
