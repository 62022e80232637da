package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// keySpec binds one dotted config key to its Config field and env var.
type keySpec struct {
	key    string
	env    string
	secret bool
	parse  func(string) (any, error)
	apply  func(cfg *Config, v any)
	get    func(cfg Config) any
}

func asString(s string) (any, error) { return s, nil }

func asInt(s string) (any, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return i, nil
}

func asBool(s string) (any, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("not a bool: %q", s)
	}
	return b, nil
}

func stringKey(key, env string, field func(cfg *Config) *string) keySpec {
	return keySpec{
		key: key, env: env, parse: asString,
		apply: func(cfg *Config, v any) { *field(cfg) = v.(string) },
		get:   func(cfg Config) any { return *field(&cfg) },
	}
}

var specs = []keySpec{
	{
		key: "server.port", env: "JOBFILL_SERVER_PORT", parse: asInt,
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		get:   func(cfg Config) any { return cfg.Server.Port },
	},
	stringKey("storage.data_dir", "JOBFILL_STORAGE_DATA_DIR", func(c *Config) *string { return &c.Storage.DataDir }),
	stringKey("log.level", "JOBFILL_LOG_LEVEL", func(c *Config) *string { return &c.Log.Level }),
	stringKey("llm.provider", "JOBFILL_PROVIDER", func(c *Config) *string { return &c.LLM.Provider }),
	{
		key: "llm.api_key", env: "JOBFILL_API_KEY", secret: true, parse: asString,
		apply: func(cfg *Config, v any) { cfg.LLM.APIKey = v.(string) },
		get:   func(cfg Config) any { return cfg.LLM.APIKey },
	},
	{
		key: "llm.json_mode", env: "JOBFILL_JSON_MODE", parse: asBool,
		apply: func(cfg *Config, v any) { cfg.LLM.JSONMode = v.(bool) },
		get:   func(cfg Config) any { return cfg.LLM.JSONMode },
	},
	stringKey("providers.openai.base_url", "JOBFILL_OPENAI_BASE_URL", func(c *Config) *string { return &c.Providers.OpenAI.BaseURL }),
	stringKey("providers.openai.model", "JOBFILL_OPENAI_MODEL", func(c *Config) *string { return &c.Providers.OpenAI.Model }),
	stringKey("providers.xai.base_url", "JOBFILL_XAI_BASE_URL", func(c *Config) *string { return &c.Providers.XAI.BaseURL }),
	stringKey("providers.xai.model", "JOBFILL_XAI_MODEL", func(c *Config) *string { return &c.Providers.XAI.Model }),
	stringKey("page.fetch_timeout", "JOBFILL_PAGE_FETCH_TIMEOUT", func(c *Config) *string { return &c.Page.FetchTimeout }),
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

// applyBackend copies stored values into cfg. A stored value that does not
// parse is an error.
func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		raw, ok, err := b.Get(s.key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.key, err)
		}
		if !ok || raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			return fmt.Errorf("config key %s: %w", s.key, err)
		}
		s.apply(cfg, v)
	}
	return nil
}

// applyEnv overrides cfg from JOBFILL_* variables. Unparseable values are
// logged and skipped.
func applyEnv(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			slog.Warn("ignoring environment override", "var", s.env, "error", err)
			continue
		}
		s.apply(cfg, v)
	}
}
