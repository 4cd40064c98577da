package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/gotomethod/internal/config"
	"github.com/xonecas/gotomethod/internal/lsp"
	"github.com/xonecas/gotomethod/internal/symbols"
	"github.com/xonecas/gotomethod/internal/treesitter"
	"github.com/xonecas/gotomethod/internal/tui"
)

const stopTimeout = 3 * time.Second

type options struct {
	configPath string
	provider   string
	theme      string
	line       int
	pick       bool
	list       bool
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "gotomethod FILE",
		Short: "Browse a source file and jump between its methods",
		Long: `gotomethod shows a source file in the terminal. Press ctrl+o (or @) to
list the file's methods and functions, preview them as you move through the
list, and jump to the one you pick. Symbols come from a language server when
one is installed, with a built-in tree-sitter parser as fallback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/gotomethod/config.toml)")
	f.StringVar(&opts.provider, "provider", "", "symbol provider: auto, lsp or treesitter")
	f.StringVar(&opts.theme, "theme", "", "chroma syntax theme")
	f.IntVar(&opts.line, "line", 0, "start with the cursor on this line")
	f.BoolVar(&opts.pick, "pick", false, "open Go To Method immediately")
	f.BoolVar(&opts.list, "list", false, "print the file's methods and exit")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFile, "log-file", "", "log file (default ~/.config/gotomethod/gotomethod.log)")
	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	closeLog, err := setupLogging(opts.logLevel, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.Symbols.Provider = opts.provider
	}
	if opts.theme != "" {
		cfg.UI.SyntaxTheme = opts.theme
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gotomethod: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, providerName, stop := newSource(cfg, path)
	defer stop()

	out := cmd.OutOrStdout()
	if opts.list {
		qctx, cancel := context.WithTimeout(ctx, cfg.Symbols.Timeout())
		defer cancel()
		return writeEntries(out, symbols.Collect(qctx, src, path))
	}

	log.Info().Str("file", path).Str("provider", providerName).Msg("gotomethod: starting")
	p := tea.NewProgram(
		tui.New(tui.Options{
			Path:           path,
			Text:           string(data),
			Source:         src,
			ProviderName:   providerName,
			Timeout:        cfg.Symbols.Timeout(),
			Theme:          cfg.UI.SyntaxThemeOrDefault(),
			HighlightColor: cfg.UI.HighlightColor,
			Line:           opts.line,
			OpenPicker:     opts.pick,
			Context:        ctx,
		}),
		tea.WithFilter(tui.MouseEventFilter),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("gotomethod: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		if res := m.Result(); res.Committed {
			fmt.Fprintf(out, "%s:%d:%d\n", path, res.Cursor.Line+1, res.Cursor.Character+1)
		}
	}
	return nil
}

// newSource builds the configured symbol source. The returned stop func
// shuts down any language servers that were started.
func newSource(cfg *config.Config, path string) (symbols.Source, string, func()) {
	if cfg.Symbols.ProviderOrDefault() == config.ProviderTreeSitter {
		return treesitter.New(), "tree-sitter", func() {}
	}

	mgr := lsp.NewManager(cfg.LSP.Servers)
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		mgr.StopAll(ctx)
	}

	if cfg.Symbols.ProviderOrDefault() == config.ProviderLSP {
		return mgr, "lsp", stop
	}
	name := "tree-sitter"
	if mgr.Available(path) {
		name = "lsp"
	}
	return symbols.FirstAvailable(mgr, treesitter.New()), name, stop
}

// setupLogging points the global logger at a file; the terminal belongs to
// the UI.
func setupLogging(level, path string) (func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("gotomethod: --log-level: %w", err)
	}
	if path == "" {
		dir, err := config.EnsureDataDir()
		if err != nil {
			return nil, fmt.Errorf("gotomethod: %w", err)
		}
		path = filepath.Join(dir, "gotomethod.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("gotomethod: open log: %w", err)
	}

	prev := log.Logger
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() {
		log.Logger = prev
		_ = f.Close()
	}, nil
}

// writeEntries prints one entry per line as "line:col<TAB>label<TAB>context"
// with one-based positions. Entries without a range print "-" in place of
// the position.
func writeEntries(w io.Writer, entries []symbols.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		pos := "-"
		if r, ok := e.Range(); ok {
			pos = fmt.Sprintf("%d:%d", r.Start.Line+1, r.Start.Character+1)
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\n", pos, e.Label(), e.Context())
	}
	return bw.Flush()
}
