//go:build !darwin

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

func defaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"), "jobfill-data")
}

func configFilePath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config", "."), "config.json")
}

// xdgDir resolves $env/jobfill, falling back to ~/rel/jobfill, or to
// fallback when there is no home directory.
func xdgDir(env, rel, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, "jobfill")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, rel, "jobfill")
}

func apiKeyHint() string {
	return " or the secrets file " + secretsFilePath()
}

// readJSONFile decodes path into v. A missing file leaves v untouched.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// writeJSONFile replaces path with v, readable only by the owner.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// fileBackend keeps settings as a flat JSON object of strings. Non-string
// JSON values written by hand are read back in their literal form.
type fileBackend struct {
	path   string
	values map[string]json.RawMessage
}

func newPlatformBackend() Backend {
	b := &fileBackend{path: configFilePath(), values: map[string]json.RawMessage{}}
	if err := readJSONFile(b.path, &b.values); err != nil {
		slog.Warn("config file unreadable, using defaults", "path", b.path, "error", err)
	}
	return b
}

func (b *fileBackend) Get(key string) (string, bool, error) {
	raw, ok := b.values[key]
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), true, nil
	}
	return s, true, nil
}

func (b *fileBackend) Set(key, val string) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	b.values[key] = raw
	return writeJSONFile(b.path, b.values)
}

func (b *fileBackend) Delete(key string) error {
	delete(b.values, key)
	return writeJSONFile(b.path, b.values)
}
