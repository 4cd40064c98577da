package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GOTOMETHOD_THEME", "")
	t.Setenv("GOTOMETHOD_PROVIDER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.UI.SyntaxThemeOrDefault(); got != "github-dark" {
		t.Errorf("theme = %q", got)
	}
	if got := cfg.Symbols.ProviderOrDefault(); got != ProviderAuto {
		t.Errorf("provider = %q", got)
	}
	if got := cfg.Symbols.Timeout(); got != 5*time.Second {
		t.Errorf("timeout = %v", got)
	}
	if cfg.LSP.Servers == nil {
		t.Error("servers map must be initialised")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("GOTOMETHOD_THEME", "")
	t.Setenv("GOTOMETHOD_PROVIDER", "")

	path := writeConfig(t, `
[ui]
syntax_theme = "dracula"
highlight_color = "#334455"

[symbols]
provider = "treesitter"
timeout_ms = 1500

[lsp.servers.pyright]
command = "pyright-langserver"
args = ["--stdio"]
filetypes = ["python"]
root_markers = ["pyproject.toml"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UI.SyntaxTheme != "dracula" || cfg.UI.HighlightColor != "#334455" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Symbols.Provider != ProviderTreeSitter || cfg.Symbols.Timeout() != 1500*time.Millisecond {
		t.Errorf("symbols = %+v", cfg.Symbols)
	}
	srv, ok := cfg.LSP.Servers["pyright"]
	if !ok {
		t.Fatal("pyright server missing")
	}
	if srv.Command != "pyright-langserver" || len(srv.Args) != 1 || srv.FileTypes[0] != "python" {
		t.Errorf("server = %+v", srv)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOTOMETHOD_THEME", "nord")
	t.Setenv("GOTOMETHOD_PROVIDER", "lsp")

	cfg, err := Load(writeConfig(t, "[ui]\nsyntax_theme = \"dracula\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UI.SyntaxTheme != "nord" {
		t.Errorf("theme = %q, want nord", cfg.UI.SyntaxTheme)
	}
	if cfg.Symbols.Provider != ProviderLSP {
		t.Errorf("provider = %q, want lsp", cfg.Symbols.Provider)
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Load(writeConfig(t, "[ui\nsyntax_theme =")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid",
			cfg:  Config{Symbols: SymbolsConfig{Provider: "lsp"}},
		},
		{
			name:    "bad provider",
			cfg:     Config{Symbols: SymbolsConfig{Provider: "ctags"}},
			wantErr: []string{"symbols.provider"},
		},
		{
			name:    "negative timeout",
			cfg:     Config{Symbols: SymbolsConfig{TimeoutMS: -1}},
			wantErr: []string{"symbols.timeout_ms"},
		},
		{
			name:    "bad color",
			cfg:     Config{UI: UIConfig{HighlightColor: "red"}},
			wantErr: []string{"ui.highlight_color"},
		},
		{
			name: "incomplete server",
			cfg: Config{LSP: LSPConfig{Servers: map[string]ServerConfig{
				"x": {},
			}}},
			wantErr: []string{"lsp.servers.x.command", "lsp.servers.x.filetypes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}
