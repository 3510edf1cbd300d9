package config

import (
	"os"
	"path/filepath"
)

// Path returns the config file location. The BEHAVE_CONFIG environment
// variable overrides the default ~/.behave/config.
func Path() (string, error) {
	if p := os.Getenv("BEHAVE_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".behave", "config"), nil
}

// EnsureDir creates the config directory if needed.
func EnsureDir() error {
	p, err := Path()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(p), 0o755)
}
