//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultsDomain = "com.jobfill.app"

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "jobfill-data"
	}
	return filepath.Join(home, "Library", "Application Support", "jobfill")
}

func apiKeyHint() string {
	return " or macOS Keychain (service: jobfill, account: api_key)"
}

// defaultsBackend stores settings in UserDefaults through the defaults CLI.
type defaultsBackend string

func newPlatformBackend() Backend {
	return defaultsBackend(defaultsDomain)
}

func (d defaultsBackend) run(args ...string) (string, error) {
	out, err := exec.Command("defaults", append([]string{args[0], string(d)}, args[1:]...)...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func (d defaultsBackend) Get(key string) (string, bool, error) {
	out, err := d.run("read", key)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, true, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		// Key absent from the domain.
		return "", false, nil
	default:
		return "", false, fmt.Errorf("defaults read %s: %w: %s", key, err, out)
	}
}

func (d defaultsBackend) Set(key, val string) error {
	if out, err := d.run("write", key, "-string", val); err != nil {
		return fmt.Errorf("defaults write %s: %w: %s", key, err, out)
	}
	return nil
}

func (d defaultsBackend) Delete(key string) error {
	if out, err := d.run("delete", key); err != nil {
		return fmt.Errorf("defaults delete %s: %w: %s", key, err, out)
	}
	return nil
}
