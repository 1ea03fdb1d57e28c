package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/javanhut/ivaldi-history/history"
)

// Config represents ivh configuration
type Config struct {
	History HistoryConfig `yaml:"history"`
	Color   ColorConfig   `yaml:"color"`
}

// HistoryConfig holds engine settings. Pointer fields distinguish "unset"
// from false so a project file can override a global one either way.
type HistoryConfig struct {
	MaxEntries    int    `yaml:"max_entries,omitempty"`
	DebounceDelay string `yaml:"debounce_delay,omitempty"`
	Compression   *bool  `yaml:"compression,omitempty"`
	AutoCleanup   *bool  `yaml:"auto_cleanup,omitempty"`
}

// ColorConfig holds color settings
type ColorConfig struct {
	UI *bool `yaml:"ui,omitempty"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"history.max_entries",
	"history.debounce_delay",
	"history.compression",
	"history.auto_cleanup",
	"color.ui",
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns a config with the engine defaults filled in
func DefaultConfig() *Config {
	defaults := history.DefaultConfig()
	return &Config{
		History: HistoryConfig{
			MaxEntries:    defaults.MaxEntries,
			DebounceDelay: defaults.DebounceDelay.String(),
			Compression:   boolPtr(defaults.EnableCompression),
			AutoCleanup:   boolPtr(defaults.AutoCleanup),
		},
		Color: ColorConfig{
			UI: boolPtr(true),
		},
	}
}

// Paths names the config files, lowest precedence first.
type Paths struct {
	Global  string
	Project string
}

// DefaultPaths returns ~/.ivhconfig.yaml and ./.ivh.yaml.
func DefaultPaths() Paths {
	p := Paths{Project: ".ivh.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		p.Global = filepath.Join(home, ".ivhconfig.yaml")
	}
	return p
}

// Load reads the global then the project file over the defaults. Missing
// files are skipped; malformed ones are an error.
func Load(p Paths) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range []string{p.Global, p.Project} {
		layer, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if layer != nil {
			mergeConfig(cfg, layer)
		}
	}
	return cfg, nil
}

// LoadConfig loads configuration from the default locations
func LoadConfig() (*Config, error) {
	return Load(DefaultPaths())
}

func readFile(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Get returns the value of a dotted key (e.g., "history.max_entries")
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "history.max_entries":
		return strconv.Itoa(c.History.MaxEntries), nil
	case "history.debounce_delay":
		return c.History.DebounceDelay, nil
	case "history.compression":
		return formatBool(c.History.Compression), nil
	case "history.auto_cleanup":
		return formatBool(c.History.AutoCleanup), nil
	case "color.ui":
		return formatBool(c.Color.UI), nil
	default:
		return "", unknownKey(key)
	}
}

// Set parses value and assigns it to a dotted key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "history.max_entries":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		c.History.MaxEntries = n
	case "history.debounce_delay":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s must be a positive duration like 300ms, got %q", key, value)
		}
		c.History.DebounceDelay = d.String()
	case "history.compression", "history.auto_cleanup", "color.ui":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		switch key {
		case "history.compression":
			c.History.Compression = &b
		case "history.auto_cleanup":
			c.History.AutoCleanup = &b
		default:
			c.Color.UI = &b
		}
	default:
		return unknownKey(key)
	}
	return nil
}

// ColorEnabled reports whether colored output is on.
func (c *Config) ColorEnabled() bool {
	return c.Color.UI == nil || *c.Color.UI
}

// EngineOptions converts the history section into engine options.
func (c *Config) EngineOptions() ([]history.Option, error) {
	var opts []history.Option
	if c.History.MaxEntries > 0 {
		opts = append(opts, history.WithMaxEntries(c.History.MaxEntries))
	}
	if c.History.DebounceDelay != "" {
		d, err := time.ParseDuration(c.History.DebounceDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid history.debounce_delay: %w", err)
		}
		opts = append(opts, history.WithDebounceDelay(d))
	}
	if c.History.Compression != nil {
		opts = append(opts, history.WithCompression(*c.History.Compression))
	}
	if c.History.AutoCleanup != nil {
		opts = append(opts, history.WithAutoCleanup(*c.History.AutoCleanup))
	}
	return opts, nil
}

// GetValue retrieves a configuration value by key from the default locations
func GetValue(key string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Get(key)
}

// SetValue sets a key in the global or project file, leaving other keys in
// that file as they were.
func SetValue(p Paths, key, value string, global bool) error {
	path := p.Project
	if global {
		path = p.Global
	}
	if path == "" {
		return fmt.Errorf("no config path for %s scope", scope(global))
	}

	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return Save(path, cfg)
}

// mergeConfig merges source config into destination config
// Only values set in source override destination
func mergeConfig(dst, src *Config) {
	if src.History.MaxEntries > 0 {
		dst.History.MaxEntries = src.History.MaxEntries
	}
	if src.History.DebounceDelay != "" {
		dst.History.DebounceDelay = src.History.DebounceDelay
	}
	if src.History.Compression != nil {
		dst.History.Compression = src.History.Compression
	}
	if src.History.AutoCleanup != nil {
		dst.History.AutoCleanup = src.History.AutoCleanup
	}
	if src.Color.UI != nil {
		dst.Color.UI = src.Color.UI
	}
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func unknownKey(key string) error {
	if !strings.Contains(key, ".") {
		return fmt.Errorf("invalid config key: %s (expected format: section.key)", key)
	}
	return fmt.Errorf("unknown config key: %s", key)
}

func scope(global bool) string {
	if global {
		return "global"
	}
	return "project"
}
