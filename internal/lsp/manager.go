package lsp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	powernapconfig "github.com/charmbracelet/x/powernap/pkg/config"
	powernap "github.com/charmbracelet/x/powernap/pkg/lsp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xonecas/gotomethod/internal/config"
	"github.com/xonecas/gotomethod/internal/symbols"
)

// startTimeout bounds spawning and initializing one server.
const startTimeout = 15 * time.Second

// skipAutoStart lists generic commands that should not be auto-started.
// These interpreters/runners may trigger package downloads or run wrong binaries.
var skipAutoStart = map[string]bool{
	"npx":     true,
	"node":    true,
	"python":  true,
	"python3": true,
	"java":    true,
	"ruby":    true,
	"perl":    true,
	"dotnet":  true,
	"bun":     true,
}

// serverSpec is one entry of the server catalogue.
type serverSpec struct {
	Name        string
	Command     string
	Args        []string
	FileTypes   []string
	RootMarkers []string
	InitOptions interface{}
}

// Manager picks the language server for a document and keeps it running
// for the lifetime of the program.
type Manager struct {
	catalogue map[string]serverSpec

	// lookPath, detect and start are replaced in tests.
	lookPath func(string) string
	detect   func(string) string
	start    func(ctx context.Context, spec serverSpec, cmdPath, root, lang string) (*Client, error)

	mu      sync.Mutex
	clients map[string]*Client // serverName -> client
	broken  map[string]bool    // servers that failed to start
}

// NewManager creates a manager with powernap's built-in server defaults,
// extended or overridden by the configured servers.
func NewManager(servers map[string]config.ServerConfig) *Manager {
	// Silence powernap's slog output; it writes to stderr which the TUI owns.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	cm := powernapconfig.NewManager()
	if err := cm.LoadDefaults(); err != nil {
		log.Warn().Err(err).Msg("lsp: load server defaults")
	}

	catalogue := make(map[string]serverSpec)
	for name, cfg := range cm.GetServers() {
		if cfg == nil {
			continue
		}
		catalogue[name] = serverSpec{
			Name:        name,
			Command:     cfg.Command,
			Args:        cfg.Args,
			FileTypes:   cfg.FileTypes,
			RootMarkers: cfg.RootMarkers,
			InitOptions: cfg.InitOptions,
		}
	}
	for name, cfg := range servers {
		catalogue[name] = serverSpec{
			Name:        name,
			Command:     cfg.Command,
			Args:        cfg.Args,
			FileTypes:   cfg.FileTypes,
			RootMarkers: cfg.RootMarkers,
		}
	}

	return newManager(catalogue)
}

func newManager(catalogue map[string]serverSpec) *Manager {
	return &Manager{
		catalogue: catalogue,
		lookPath:  lookPath,
		detect:    func(p string) string { return string(powernap.DetectLanguage(p)) },
		start:     startClient,
		clients:   make(map[string]*Client),
		broken:    make(map[string]bool),
	}
}

// DocumentSymbols implements symbols.Source. It returns
// symbols.ErrUnsupported when no server can handle the document.
func (m *Manager) DocumentSymbols(ctx context.Context, path string) (symbols.Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return symbols.Result{}, err
	}
	c, err := m.clientFor(ctx, absPath)
	if err != nil {
		return symbols.Result{}, err
	}
	return c.DocumentSymbols(ctx, absPath)
}

// Available reports whether some server could serve path, without starting it.
func (m *Manager) Available(path string) bool {
	lang := m.detect(path)
	if lang == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, spec := range m.candidates(lang) {
		if _, ok := m.clients[spec.Name]; ok {
			return true
		}
		if !skipAutoStart[spec.Command] && m.lookPath(spec.Command) != "" {
			return true
		}
	}
	return false
}

// StopAll gracefully shuts down all running LSP servers.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.clients = make(map[string]*Client)
	m.mu.Unlock()

	var g errgroup.Group
	for _, c := range clients {
		g.Go(func() error {
			if err := c.close(ctx); err != nil {
				log.Error().Err(err).Str("server", c.serverID).Msg("lsp: stopAll")
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
}

// clientFor returns the running client for absPath's language, starting the
// first usable server from the catalogue if none is running yet.
func (m *Manager) clientFor(ctx context.Context, absPath string) (*Client, error) {
	lang := m.detect(absPath)
	if lang == "" {
		log.Debug().Str("file", absPath).Msg("lsp: unknown language, skipping")
		return nil, symbols.ErrUnsupported
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, spec := range m.candidates(lang) {
		if c, ok := m.clients[spec.Name]; ok {
			return c, nil
		}
		if skipAutoStart[spec.Command] {
			m.broken[spec.Name] = true
			continue
		}
		cmdPath := m.lookPath(spec.Command)
		if cmdPath == "" {
			m.broken[spec.Name] = true
			continue
		}
		root := findRoot(absPath, spec.RootMarkers)
		if root == "" {
			root = filepath.Dir(absPath)
		}

		// A cold server can take longer than one query is willing to wait,
		// so start-up gets its own deadline. The caller's deadline must not
		// mark a healthy server broken.
		startCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), startTimeout)
		c, err := m.start(startCtx, spec, cmdPath, root, lang)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("server", spec.Name).Msg("lsp: start failed")
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			m.broken[spec.Name] = true
			continue
		}
		log.Info().Str("server", spec.Name).Str("root", root).Str("cmd", cmdPath).Msg("lsp: server started")
		m.clients[spec.Name] = c
		return c, nil
	}

	return nil, fmt.Errorf("lsp: no server for %s: %w", lang, symbols.ErrUnsupported)
}

// candidates lists the usable servers for lang in a stable order. Must be
// called with m.mu held.
func (m *Manager) candidates(lang string) []serverSpec {
	var out []serverSpec
	for name, spec := range m.catalogue {
		if m.broken[name] || !matchesFileType(spec, lang) {
			continue
		}
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// matchesFileType checks if a server handles the given language ID.
func matchesFileType(spec serverSpec, lang string) bool {
	for _, ft := range spec.FileTypes {
		if ft == lang {
			return true
		}
	}
	return false
}

// findRoot walks up from the file looking for any of the root markers.
func findRoot(absPath string, markers []string) string {
	dir := filepath.Dir(absPath)
	for {
		for _, marker := range markers {
			matches, _ := filepath.Glob(filepath.Join(dir, marker))
			if len(matches) > 0 {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// lookPath finds a command binary, checking PATH first, then common
// language-specific bin directories that may not be in PATH.
func lookPath(command string) string {
	if command == "" {
		return ""
	}
	if p, err := exec.LookPath(command); err == nil {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	var extras []string

	// Go: $GOBIN or $GOPATH/bin or ~/go/bin
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		extras = append(extras, gobin)
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		extras = append(extras, filepath.Join(gopath, "bin"))
	}
	extras = append(extras, filepath.Join(home, "go", "bin"))

	// Rust: ~/.cargo/bin
	extras = append(extras, filepath.Join(home, ".cargo", "bin"))

	// Local bin
	extras = append(extras, filepath.Join(home, ".local", "bin"))

	for _, dir := range extras {
		p := filepath.Join(dir, command)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
