package config

import (
	"errors"
	"strings"
	"testing"
)

// mockKeychain is a test double for the keychain interface.
type mockKeychain struct {
	value string
	err   error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	return m.value, m.err
}

// memKeychain is a writable Keychain kept in memory.
type memKeychain struct {
	data map[string]string
	sets int
}

func (m *memKeychain) Get(service, account string) (string, error) {
	v, ok := m.data[service+"/"+account]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *memKeychain) Set(service, account, value string) error {
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[service+"/"+account] = value
	m.sets++
	return nil
}

// mapBackend is an in-memory Backend.
type mapBackend map[string]string

func (m mapBackend) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapBackend) Set(key, val string) error { m[key] = val; return nil }
func (m mapBackend) Delete(key string) error   { delete(m, key); return nil }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied when the backend is empty.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{err: errors.New("none")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, "openai")
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("LLM.APIKey = %q, want empty", cfg.LLM.APIKey)
	}
	if cfg.Providers.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Providers.OpenAI.BaseURL = %q", cfg.Providers.OpenAI.BaseURL)
	}
	if cfg.Providers.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Providers.OpenAI.Model = %q, want %q", cfg.Providers.OpenAI.Model, "gpt-4o-mini")
	}
	if cfg.Providers.XAI.BaseURL != "https://api.x.ai/v1" {
		t.Errorf("Providers.XAI.BaseURL = %q", cfg.Providers.XAI.BaseURL)
	}
	if cfg.Providers.XAI.Model != "grok-beta" {
		t.Errorf("Providers.XAI.Model = %q, want %q", cfg.Providers.XAI.Model, "grok-beta")
	}
	if cfg.LLM.JSONMode {
		t.Error("LLM.JSONMode = true, want false")
	}
}

// TestBackendValues verifies that backend entries replace defaults.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := mapBackend{
		"server.port":               "5100",
		"llm.provider":              "XAI",
		"llm.json_mode":             "true",
		"providers.xai.model":       "grok-2",
		"storage.data_dir":          "/tmp/jobfill-test",
		"llm.api_key":               "ignored-secret-in-backend",
		"log.level":                 "debug",
		"page.fetch_timeout":        "5s",
		"providers.openai.base_url": "http://localhost:9999/v1",
	}
	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5100 {
		t.Errorf("Server.Port = %d, want 5100", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "xai" {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, "xai")
	}
	if !cfg.LLM.JSONMode {
		t.Error("LLM.JSONMode = false, want true")
	}
	if cfg.Providers.XAI.Model != "grok-2" {
		t.Errorf("Providers.XAI.Model = %q", cfg.Providers.XAI.Model)
	}
	if cfg.Storage.DataDir != "/tmp/jobfill-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("LLM.APIKey = %q, secrets must not be read from the backend", cfg.LLM.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Providers.OpenAI.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("Providers.OpenAI.BaseURL = %q", cfg.Providers.OpenAI.BaseURL)
	}
}

func TestBackendError(t *testing.T) {
	clearEnv(t)

	_, err := loadWith(mapBackend{"server.port": "abc"}, mockKeychain{})
	if err == nil {
		t.Fatal("expected error for non-integer port")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("error = %q, want it to name the key", err.Error())
	}
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBFILL_API_KEY", "env-key")
	t.Setenv("JOBFILL_SERVER_PORT", "6000")
	t.Setenv("JOBFILL_PROVIDER", "xai")

	cfg, err := loadWith(mapBackend{"server.port": "5100"}, mockKeychain{value: "keychain-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("LLM.APIKey = %q, want %q", cfg.LLM.APIKey, "env-key")
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "xai" {
		t.Errorf("LLM.Provider = %q, want xai", cfg.LLM.Provider)
	}
}

func TestEnvOverride_InvalidIntKeepsValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBFILL_SERVER_PORT", "not-a-port")

	cfg, err := loadWith(mapBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want default 4100", cfg.Server.Port)
	}
}

// TestKeychainFallback verifies the keychain is consulted when no API key is in env.
func TestKeychainFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{value: "keychain-secret\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.APIKey != "keychain-secret" {
		t.Errorf("LLM.APIKey = %q, want %q", cfg.LLM.APIKey, "keychain-secret")
	}
}

func TestEndpoint(t *testing.T) {
	cfg := defaults()

	ep, ok := cfg.Endpoint("XAI")
	if !ok || ep.Model != "grok-beta" {
		t.Errorf("Endpoint(XAI) = %+v, %v", ep, ok)
	}
	if _, ok := cfg.Endpoint("anthropic"); ok {
		t.Error("Endpoint(anthropic) ok = true, want false")
	}
}

func TestSetKey(t *testing.T) {
	b := mapBackend{}

	if err := setKeyWith(b, "server.port", "4200"); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if b["server.port"] != "4200" {
		t.Errorf("server.port = %q, want 4200", b["server.port"])
	}

	if err := setKeyWith(b, "llm.json_mode", "1"); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if b["llm.json_mode"] != "true" {
		t.Errorf("llm.json_mode = %q, want true", b["llm.json_mode"])
	}

	if err := setKeyWith(b, "server.port", "x"); err == nil {
		t.Error("expected error for invalid integer")
	}
	if err := setKeyWith(b, "llm.api_key", "sk-1"); err == nil || !strings.Contains(err.Error(), "JOBFILL_API_KEY") {
		t.Errorf("secret set error = %v, want mention of JOBFILL_API_KEY", err)
	}
	if err := setKeyWith(b, "nope", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestBackend_BadBoolIsError(t *testing.T) {
	clearEnv(t)

	if _, err := loadWith(mapBackend{"llm.json_mode": "sometimes"}, mockKeychain{}); err == nil {
		t.Fatal("expected error for non-bool json_mode")
	}
}

func TestBackend_EmptyValueKeepsDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(mapBackend{"server.port": "", "log.level": ""}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4100 || cfg.Log.Level != "info" {
		t.Errorf("port = %d, level = %q, want defaults", cfg.Server.Port, cfg.Log.Level)
	}
}

func TestShowAll_MasksSecrets(t *testing.T) {
	cfg := defaults()
	cfg.LLM.APIKey = "sk-secret"

	for _, k := range ShowAll(cfg) {
		if strings.Contains(k.Value, "sk-secret") {
			t.Fatalf("ShowAll leaked secret in %s", k.Key)
		}
		if k.Key == "llm.api_key" && k.Value != "(set)" {
			t.Errorf("llm.api_key = %q, want (set)", k.Value)
		}
	}
}

func TestValidKeys_ExcludesSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "llm.api_key" {
			t.Fatal("ValidKeys includes secret key")
		}
	}
}

func TestGetAPIToken(t *testing.T) {
	kc := &memKeychain{}

	first, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("GetAPIToken: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("token length = %d, want 64", len(first))
	}

	second, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("GetAPIToken: %v", err)
	}
	if second != first {
		t.Errorf("second token = %q, want stored %q", second, first)
	}
	if kc.sets != 1 {
		t.Errorf("Set called %d times, want 1", kc.sets)
	}
}
