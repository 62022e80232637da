//go:build !darwin

package config

import (
	"fmt"
	"path/filepath"
)

// secretsFilePath lives next to the database so a custom XDG_DATA_HOME moves both.
func secretsFilePath() string {
	return filepath.Join(defaultDataDir(), "secrets.json")
}

// secrets maps service to account to value.
type secrets map[string]map[string]string

func keychainGet(service, account string) ([]byte, error) {
	var s secrets
	if err := readJSONFile(secretsFilePath(), &s); err != nil {
		return nil, fmt.Errorf("secret store not available: %w", err)
	}
	val, ok := s[service][account]
	if !ok {
		return nil, fmt.Errorf("no secret %s/%s", service, account)
	}
	return []byte(val), nil
}

func keychainSet(service, account, value string) error {
	path := secretsFilePath()
	s := secrets{}
	if err := readJSONFile(path, &s); err != nil {
		return err
	}
	if s[service] == nil {
		s[service] = map[string]string{}
	}
	s[service][account] = value
	return writeJSONFile(path, s)
}
