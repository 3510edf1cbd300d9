// Package config loads behave's runtime settings from a small option file.
// The format is dnsmasq-style: one "optionName value" pair per line, with
// blank lines and #-comments ignored. Unknown options are collected as
// warnings rather than errors so older configs keep working.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds behave's runtime settings.
type Config struct {
	// TickRate is the number of tree updates per second for the run
	// command.
	TickRate int
	// MaxTicks bounds a run; zero means no bound.
	MaxTicks int
	// AssetPaths are directories searched for tree asset files, in order.
	AssetPaths []string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// ScriptTimeout bounds synchronous script bridge operations.
	ScriptTimeout time.Duration
	// Warnings collects non-fatal issues found while loading.
	Warnings []string
}

// New returns a config with defaults applied.
func New() *Config {
	return &Config{
		TickRate:      30,
		MaxTicks:      0,
		LogLevel:      "info",
		ScriptTimeout: 5 * time.Second,
	}
}

// Load reads the config from the default path. A missing file yields the
// defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("config: resolve path: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the config from path. Symlinked config files are
// rejected: the loader refuses to follow a link that could substitute a
// different file for the user's config.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("config: symlink not allowed: %s", path)
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses config lines from r.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, _ := strings.Cut(line, " ")
		value = strings.TrimSpace(value)
		if err := cfg.apply(name, value); err != nil {
			return nil, fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(name, value string) error {
	switch name {
	case "tick-rate":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("tick-rate must be a positive integer, got %q", value)
		}
		c.TickRate = n
	case "max-ticks":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("max-ticks must be a non-negative integer, got %q", value)
		}
		c.MaxTicks = n
	case "asset-path":
		if value == "" {
			return fmt.Errorf("asset-path requires a directory")
		}
		c.AssetPaths = append(c.AssetPaths, value)
	case "log-level":
		switch value {
		case "debug", "info", "warn", "error":
			c.LogLevel = value
		default:
			return fmt.Errorf("unknown log-level %q", value)
		}
	case "script-timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("script-timeout must be a duration, got %q", value)
		}
		c.ScriptTimeout = d
	default:
		c.Warnings = append(c.Warnings, fmt.Sprintf("unknown option %q ignored", name))
	}
	return nil
}
