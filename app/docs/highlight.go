package docs

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// chroma styles used for each display mode
const (
	lightStyle = "monokailight"
	darkStyle  = "monokai"
)

// Highlighter provides syntax highlighting for source files.
type Highlighter struct {
	formatter *chromahtml.Formatter
}

// NewHighlighter creates a new Highlighter instance.
func NewHighlighter() *Highlighter {
	// use CSS classes for theme-aware styling
	return &Highlighter{formatter: chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.PreventSurroundingPre(false),
		chromahtml.WithLineNumbers(true),
	)}
}

// Code highlights code picking the lexer by file name.
// Returns escaped plain text in <pre> if no lexer matches or highlighting fails.
func (h *Highlighter) Code(code, filename string) template.HTML {
	lexer := lexers.Match(filename)
	if lexer == nil {
		return plain(code)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain(code)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, style(lightStyle), iterator); err != nil {
		return plain(code)
	}
	return template.HTML(buf.String()) //nolint:gosec // chroma output is safe
}

// StyleSheet returns CSS for highlighted code in both modes. Light rules apply by default,
// dark rules apply under data-theme="dark" and, with no explicit theme, under a dark system scheme.
func (h *Highlighter) StyleSheet() (string, error) {
	light, err := h.css(lightStyle)
	if err != nil {
		return "", err
	}
	dark, err := h.css(darkStyle)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(scopeCSS(light, ""))
	sb.WriteString(scopeCSS(dark, `[data-theme="dark"] `))
	sb.WriteString("@media (prefers-color-scheme: dark) {\n")
	sb.WriteString(scopeCSS(dark, `:root:not([data-theme]) `))
	sb.WriteString("}\n")
	return sb.String(), nil
}

func (h *Highlighter) css(name string) (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, style(name)); err != nil {
		return "", fmt.Errorf("write css for %s: %w", name, err)
	}
	return buf.String(), nil
}

// scopeCSS prefixes every rule selector with scope and drops chroma's per-rule comments.
func scopeCSS(css, scope string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(css, "\n") {
		open := strings.Index(line, "{")
		if open < 0 {
			continue
		}
		selector := line[:open]
		if end := strings.Index(selector, "*/"); end >= 0 {
			selector = selector[end+2:]
		}
		selector = strings.TrimSpace(selector)
		if selector == "" {
			continue
		}
		sb.WriteString(scope + selector + " " + strings.TrimSpace(line[open:]) + "\n")
	}
	return sb.String()
}

func style(name string) *chroma.Style {
	if s := styles.Get(name); s != nil {
		return s
	}
	return styles.Fallback
}

func plain(code string) template.HTML {
	return template.HTML("<pre>" + html.EscapeString(code) + "</pre>") //nolint:gosec // escaped
}
