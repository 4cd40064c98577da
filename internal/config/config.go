// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Symbol providers.
const (
	ProviderAuto       = "auto"
	ProviderLSP        = "lsp"
	ProviderTreeSitter = "treesitter"
)

const (
	defaultTheme     = "github-dark"
	defaultTimeoutMS = 5000
)

// Config is the root configuration structure.
type Config struct {
	UI      UIConfig      `toml:"ui"`
	Symbols SymbolsConfig `toml:"symbols"`
	LSP     LSPConfig     `toml:"lsp"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma style used for the document view. UI
	// colors are derived from it via highlight.ThemePalette.
	SyntaxTheme string `toml:"syntax_theme"`
	// HighlightColor overrides the preview line background ("#rrggbb").
	HighlightColor string `toml:"highlight_color"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "github-dark" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return defaultTheme
	}
	return u.SyntaxTheme
}

// SymbolsConfig selects where document symbols come from.
type SymbolsConfig struct {
	Provider  string `toml:"provider"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// ProviderOrDefault returns the configured provider or "auto" if unset.
func (s SymbolsConfig) ProviderOrDefault() string {
	if s.Provider == "" {
		return ProviderAuto
	}
	return s.Provider
}

// Timeout bounds a single symbol query, including server start-up.
func (s SymbolsConfig) Timeout() time.Duration {
	if s.TimeoutMS <= 0 {
		return defaultTimeoutMS * time.Millisecond
	}
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// LSPConfig holds language server definitions that extend or replace the
// built-in catalogue.
type LSPConfig struct {
	Servers map[string]ServerConfig `toml:"servers"`
}

// ServerConfig describes how to launch one language server.
type ServerConfig struct {
	Command     string   `toml:"command"`
	Args        []string `toml:"args"`
	FileTypes   []string `toml:"filetypes"`
	RootMarkers []string `toml:"root_markers"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LSP: LSPConfig{Servers: make(map[string]ServerConfig)},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. An empty path means the default location; a missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	if cfg.LSP.Servers == nil {
		cfg.LSP.Servers = make(map[string]ServerConfig)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	switch c.Symbols.ProviderOrDefault() {
	case ProviderAuto, ProviderLSP, ProviderTreeSitter:
	default:
		errs = append(errs, fmt.Errorf("symbols.provider=%q must be one of auto, lsp, treesitter", c.Symbols.Provider))
	}

	if c.Symbols.TimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("symbols.timeout_ms=%d must not be negative", c.Symbols.TimeoutMS))
	}

	if c.UI.HighlightColor != "" && !hexColor.MatchString(c.UI.HighlightColor) {
		errs = append(errs, fmt.Errorf("ui.highlight_color=%q must look like #rrggbb", c.UI.HighlightColor))
	}

	for name, srv := range c.LSP.Servers {
		errs = append(errs, validateServerConfig(name, srv)...)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func validateServerConfig(name string, cfg ServerConfig) []error {
	var errs []error
	if cfg.Command == "" {
		errs = append(errs, fmt.Errorf("lsp.servers.%s.command is required", name))
	}
	if len(cfg.FileTypes) == 0 {
		errs = append(errs, fmt.Errorf("lsp.servers.%s.filetypes must list at least one language", name))
	}
	return errs
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"GOTOMETHOD_THEME", func(v string) {
			if v != "" {
				cfg.UI.SyntaxTheme = v
			}
		}},
		{"GOTOMETHOD_PROVIDER", func(v string) {
			if v != "" {
				cfg.Symbols.Provider = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the data directory (~/.config/gotomethod).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gotomethod"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
