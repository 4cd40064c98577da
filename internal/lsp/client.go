// Package lsp asks language servers for document symbols.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/xonecas/gotomethod/internal/symbols"
)

// Client is a connection to one running language server.
type Client struct {
	serverID string
	lang     string
	conn     *jsonrpc2.Conn

	cmd    *exec.Cmd // nil when not backed by a process
	cancel context.CancelFunc

	mu     sync.Mutex
	opened map[protocol.DocumentURI]bool
}

// startClient spawns the server binary and performs the LSP handshake.
func startClient(ctx context.Context, spec serverSpec, cmdPath, root, lang string) (*Client, error) {
	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, cmdPath, spec.Args...)
	cmd.Dir = root

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("lsp: start %s: %w", spec.Name, err)
	}

	// The terminal belongs to the UI; server chatter goes to the log.
	go func() {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			log.Debug().Str("server", spec.Name).Msg("lsp: stderr: " + sc.Text())
		}
	}()

	c := newClient(procCtx, spec.Name, lang, &stdioReadWriteCloser{reader: stdout, writer: stdin})
	c.cmd = cmd
	c.cancel = cancel

	if err := c.initialize(ctx, root, spec.InitOptions); err != nil {
		c.kill()
		return nil, fmt.Errorf("lsp: initialize %s: %w", spec.Name, err)
	}
	return c, nil
}

// newClient wires a JSON-RPC connection over rwc. The handshake is left to
// the caller.
func newClient(ctx context.Context, serverID, lang string, rwc io.ReadWriteCloser) *Client {
	c := &Client{
		serverID: serverID,
		lang:     lang,
		opened:   make(map[protocol.DocumentURI]bool),
	}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	c.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(c.handle))
	return c
}

// handle answers the server-to-client traffic. Requests that servers send
// during start-up get empty answers so they don't stall.
func (c *Client) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	if req.Notif {
		return nil, nil
	}
	switch req.Method {
	case "window/workDoneProgress/create", "client/registerCapability", "client/unregisterCapability":
		return nil, nil
	case "workspace/configuration":
		var p struct {
			Items []json.RawMessage `json:"items"`
		}
		if req.Params != nil {
			_ = json.Unmarshal(*req.Params, &p)
		}
		return make([]interface{}, len(p.Items)), nil
	case "workspace/workspaceFolders":
		return []interface{}{}, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled: " + req.Method}
}

// initialize sends initialize+initialized to the server.
func (c *Client) initialize(ctx context.Context, root string, initOptions interface{}) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   protocol.DocumentURI(pathToURI(root)),
		ClientInfo: &protocol.ClientInfo{
			Name:    "gotomethod",
			Version: "0.1",
		},
		InitializationOptions: initOptions,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
				},
			},
		},
	}
	var result protocol.InitializeResult
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	return c.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// ensureOpen sends textDocument/didOpen the first time a file is queried.
func (c *Client) ensureOpen(ctx context.Context, absPath string) error {
	uri := protocol.DocumentURI(pathToURI(absPath))

	c.mu.Lock()
	if c.opened[uri] {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("lsp: read %s: %w", absPath, err)
	}
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: protocol.LanguageIdentifier(c.lang),
			Version:    1,
			Text:       string(data),
		},
	}
	if err := c.conn.Notify(ctx, "textDocument/didOpen", params); err != nil {
		return err
	}

	c.mu.Lock()
	c.opened[uri] = true
	c.mu.Unlock()
	return nil
}

// DocumentSymbols sends textDocument/documentSymbol for absPath. The answer
// is either flat or hierarchical depending on the server.
func (c *Client) DocumentSymbols(ctx context.Context, absPath string) (symbols.Result, error) {
	if err := c.ensureOpen(ctx, absPath); err != nil {
		return symbols.Result{}, err
	}
	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(pathToURI(absPath))},
	}
	var raw json.RawMessage
	if err := c.conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return symbols.Result{}, fmt.Errorf("lsp: documentSymbol %s: %w", c.serverID, err)
	}
	res, err := decodeSymbols(raw)
	if err != nil {
		return symbols.Result{}, fmt.Errorf("lsp: documentSymbol %s: %w", c.serverID, err)
	}
	log.Debug().
		Str("server", c.serverID).
		Int("flat", len(res.Flat)).
		Int("tree", len(res.Tree)).
		Msg("lsp: document symbols")
	return res, nil
}

// close gracefully shuts down the server, killing it if it won't cooperate.
func (c *Client) close(ctx context.Context) error {
	err := c.conn.Call(ctx, "shutdown", nil, nil)
	if err == nil {
		err = c.conn.Notify(ctx, "exit", nil)
	}
	if err != nil {
		c.kill()
		return fmt.Errorf("lsp: shutdown %s: %w", c.serverID, err)
	}
	_ = c.conn.Close()
	if c.cmd != nil {
		done := make(chan struct{})
		go func() {
			_ = c.cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			c.kill()
		case <-ctx.Done():
			c.kill()
		}
	}
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *Client) kill() {
	if c.cancel != nil {
		c.cancel()
	}
	_ = c.conn.Close()
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	return errors.Join(s.reader.Close(), s.writer.Close())
}

func pathToURI(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
		return "file:///" + strings.ReplaceAll(path, ":", "%3A")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}
