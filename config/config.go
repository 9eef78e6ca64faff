// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the splitter node configuration file.
//
// The file format is one "key = value" pair per line. Blank lines and lines
// starting with '#' are ignored, as are unknown keys.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Config holds the settings of a splitter node.
type Config struct {
	DataDir   string `validate:"required"`
	LogLevel  string `validate:"loglevel"`
	LogFormat string `validate:"oneof=plain json"`
	LogFile   string

	// BumpWindow is how close to expiry an entry may get before a read or
	// write extends it. Each TTL below must be longer than the window.
	BumpWindow time.Duration `validate:"gt=0"`

	// InstanceTTL is the lifetime the configuration entry is extended to.
	InstanceTTL time.Duration `validate:"gt=0,gtfield=BumpWindow"`

	// PersistentTTL is the lifetime registry and allocation entries are
	// extended to.
	PersistentTTL time.Duration `validate:"gt=0,gtfield=BumpWindow"`

	// ChallengeTTL is how long after issue an authorization challenge is
	// accepted.
	ChallengeTTL time.Duration `validate:"gt=0"`
}

// DefaultDataDir returns ~/.splitter, or .splitter when the home directory
// is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".splitter"
	}
	return filepath.Join(home, ".splitter")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      "info",
		LogFormat:     "plain",
		BumpWindow:    day,
		InstanceTTL:   7 * day,
		PersistentTTL: 30 * day,
		ChallengeTTL:  day,
	}
}

// ConfigPath returns the path of the config file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// DBPath returns the path of the state database inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "splitter.db")
}

// InstanceThreshold is the remaining lifetime below which the configuration
// entry is extended.
func (c Config) InstanceThreshold() time.Duration { return c.InstanceTTL - c.BumpWindow }

// PersistentThreshold is the remaining lifetime below which persistent
// entries are extended.
func (c Config) PersistentThreshold() time.Duration { return c.PersistentTTL - c.BumpWindow }

// LoadConfig reads the config file at path. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "loglevel":
		c.LogLevel = value
	case "logformat":
		c.LogFormat = value
	case "logfile":
		c.LogFile = value
	case "bumpwindow", "instancettl", "persistentttl", "challengettl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidTTL, key, err)
		}
		switch key {
		case "bumpwindow":
			c.BumpWindow = d
		case "instancettl":
			c.InstanceTTL = d
		case "persistentttl":
			c.PersistentTTL = d
		case "challengettl":
			c.ChallengeTTL = d
		}
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Splitter Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logformat = %s\n", cfg.LogFormat)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Retention\n")
	fmt.Fprintf(&b, "bumpwindow = %s\n", cfg.BumpWindow)
	fmt.Fprintf(&b, "instancettl = %s\n", cfg.InstanceTTL)
	fmt.Fprintf(&b, "persistentttl = %s\n", cfg.PersistentTTL)
	fmt.Fprintf(&b, "challengettl = %s\n", cfg.ChallengeTTL)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
