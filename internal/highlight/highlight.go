// Package highlight renders source text with Chroma and derives UI colors
// from the active Chroma theme.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const sgrReset = "\x1b[0m"

// Lines highlights text and returns one self-contained string per source
// line: every line opens with the background sequence bgHex ("#rrggbb") and
// every styled token closes with a reset followed by that background again.
// The result always has as many entries as strings.Split(text, "\n").
func Lines(text, language, theme, bgHex string) []string {
	src := strings.Split(text, "\n")
	bg := BgSeq(bgHex)

	lex := lexers.Get(language)
	if lex == nil {
		return plainLines(src, bg)
	}
	it, err := chroma.Coalesce(lex).Tokenise(nil, text)
	if err != nil {
		return plainLines(src, bg)
	}
	sty := styles.Get(theme)

	out := make([]string, 0, len(src))
	var line strings.Builder
	line.WriteString(bg)
	for tok := it(); tok != chroma.EOF; tok = it() {
		sgr := tokenSGR(sty.Get(tok.Type))
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				out = append(out, line.String())
				line.Reset()
				line.WriteString(bg)
			}
			switch {
			case part == "":
			case sgr == "":
				line.WriteString(part)
			default:
				line.WriteString(sgr + part + sgrReset + bg)
			}
		}
	}
	out = append(out, line.String())

	// Lexers may add a final newline of their own.
	for len(out) < len(src) {
		out = append(out, bg)
	}
	return out[:len(src)]
}

func plainLines(src []string, bg string) []string {
	out := make([]string, len(src))
	for i, l := range src {
		out[i] = bg + l
	}
	return out
}

// tokenSGR renders a style entry as a 24-bit foreground plus attributes.
// Token backgrounds are ignored; the caller owns the background.
func tokenSGR(e chroma.StyleEntry) string {
	var b strings.Builder
	if e.Bold == chroma.Yes {
		b.WriteString("\x1b[1m")
	}
	if e.Italic == chroma.Yes {
		b.WriteString("\x1b[3m")
	}
	if e.Underline == chroma.Yes {
		b.WriteString("\x1b[4m")
	}
	if e.Colour.IsSet() {
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", e.Colour.Red(), e.Colour.Green(), e.Colour.Blue())
	}
	return b.String()
}

// BgSeq converts "#rrggbb" to an ANSI 24-bit background escape sequence, or
// "" for anything else.
func BgSeq(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return ""
	}
	r := hexByte(hex[1], hex[2])
	g := hexByte(hex[3], hex[4])
	b := hexByte(hex[5], hex[6])
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// Palette holds the UI colors derived from a Chroma theme. Grays are steps
// from bg to fg and the accent is the theme's most saturated token color.
type Palette struct {
	Bg       string // Theme background
	Fg       string // Theme foreground (primary text)
	Border   string // 10% bg→fg: borders, dividers
	Dim      string // 25% bg→fg: gutter, hints
	Muted    string // 45% bg→fg: secondary text, symbol context
	Accent   string // Most saturated token color
	RangeBg  string // 22% bg→accent: previewed method lines
	CursorBg string // 35% bg→fg: cursor cell
}

// WithRange returns p with RangeBg replaced when hex is set.
func (p Palette) WithRange(hex string) Palette {
	if hex != "" {
		p.RangeBg = hex
	}
	return p
}

// ThemePalette derives a full UI color palette from a Chroma theme name.
// Deterministic: same theme → same output. Falls back to sensible defaults
// when the theme is missing entries.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return defaultPalette()
	}
	entry := sty.Get(chroma.Background)
	bg := "#000000"
	fg := "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}

	accent := pickAccent(sty, fg)
	return Palette{
		Bg:       bg,
		Fg:       fg,
		Border:   lerpHex(bg, fg, 0.10),
		Dim:      lerpHex(bg, fg, 0.25),
		Muted:    lerpHex(bg, fg, 0.45),
		Accent:   accent,
		RangeBg:  lerpHex(bg, accent, 0.22),
		CursorBg: lerpHex(bg, fg, 0.35),
	}
}

func defaultPalette() Palette {
	return Palette{
		Bg: "#000000", Fg: "#c8c8c8",
		Border: "#141414",
		Dim: "#323232", Muted: "#5a5a5a",
		Accent: "#00dfff",
		RangeBg: "#003138", CursorBg: "#464646",
	}
}

// pickAccent returns the most saturated foreground color across all tokens.
func pickAccent(sty *chroma.Style, fallback string) string {
	best := fallback
	bestSat := 0.0
	for tt := chroma.TokenType(0); tt < 2000; tt++ {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		r, g, b := hexToRGBf(hex)
		mx := maxf(r, maxf(g, b))
		mn := minf(r, minf(g, b))
		if mx == 0 {
			continue
		}
		sat := (mx - mn) / mx
		if sat > bestSat {
			bestSat = sat
			best = hex
		}
	}
	return best
}

// lerpHex linearly interpolates between two hex colors at fraction t.
func lerpHex(a, b string, t float64) string {
	ar, ag, ab := hexToRGBf(a)
	br, bg, bb := hexToRGBf(b)
	return fmt.Sprintf("#%02x%02x%02x",
		clampByte(ar+(br-ar)*t),
		clampByte(ag+(bg-ag)*t),
		clampByte(ab+(bb-ab)*t),
	)
}

func hexToRGBf(hex string) (float64, float64, float64) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	return float64(hexByte(hex[1], hex[2])),
		float64(hexByte(hex[3], hex[4])),
		float64(hexByte(hex[5], hex[6]))
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v + 0.5)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
