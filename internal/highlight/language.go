package highlight

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// extLanguages covers extensions whose Chroma match is ambiguous or missing.
var extLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".pyi":  "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".jsx":  "react",
	".ts":   "typescript",
	".tsx":  "tsx",
	".h":    "c",
	".conf": "nginx",
}

// DetectLanguage returns the Chroma language identifier for path, or "text"
// when nothing matches.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}

	if lex := lexers.Match(filepath.Base(path)); lex != nil {
		if cfg := lex.Config(); cfg != nil && len(cfg.Aliases) > 0 {
			return cfg.Aliases[0]
		}
		return strings.ToLower(lex.Config().Name)
	}

	// Check for specific filenames
	switch strings.ToLower(filepath.Base(path)) {
	case "dockerfile":
		return "docker"
	case "makefile":
		return "make"
	case "gemfile", "rakefile":
		return "ruby"
	}

	return "text" // Default fallback
}
