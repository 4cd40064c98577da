package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/golden"

	"github.com/xonecas/gotomethod/internal/symbols"
)

func at(line, char int) symbols.Range {
	p := symbols.Position{Line: line, Character: char}
	return symbols.Range{Start: p, End: p}
}

func TestWriteEntries(t *testing.T) {
	entries := []symbols.Entry{
		symbols.NewEntry("main", "", at(49, 0)),
		symbols.NewEntry("Start", "Server", at(11, 5)),
		symbols.NewEntry("Stop", "Server", at(19, 5)),
		symbols.Placeholder(symbols.NoSymbolsLabel),
	}

	var buf bytes.Buffer
	if err := writeEntries(&buf, entries); err != nil {
		t.Fatal(err)
	}
	golden.RequireEqual(t, buf.Bytes())
}

func TestListWithTreeSitter(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shop.py")
	src := "class Cart:\n    def __init__(self):\n        pass\n\n    def total(self):\n        return 0\n\n\ndef checkout():\n    pass\n"
	if err := os.WriteFile(file, []byte(src), 0600); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--list",
		"--provider", "treesitter",
		"--config", filepath.Join(dir, "missing.toml"),
		"--log-file", filepath.Join(dir, "test.log"),
		file,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := "9:1\tcheckout\t\n2:5\t__init__\tCart\n5:5\ttotal\tCart\n"
	if got := out.String(); got != want {
		t.Errorf("output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	if err := os.WriteFile(file, []byte("package a\n"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{filepath.Join(dir, "nope.go")}, "no such file"},
		{"bad provider", []string{"--provider", "ctags", file}, "symbols.provider"},
		{"bad log level", []string{"--log-level", "loud", file}, "--log-level"},
		{"no args", nil, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			args := append([]string{
				"--list",
				"--config", filepath.Join(dir, "missing.toml"),
				"--log-file", filepath.Join(dir, "test.log"),
			}, tt.args...)
			cmd.SetArgs(args)
			err := cmd.Execute()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
