package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

const (
	// previewMaxBytes caps how much of a file the preview reads.
	previewMaxBytes = 64 * 1024
	// previewMaxLines caps how many lines the preview renders.
	previewMaxLines = 400
)

// Highlighter renders a syntax-highlighted preview of one file using Chroma.
type Highlighter struct {
	path  string
	lexer chroma.Lexer
	style *chroma.Style
}

// NewHighlighter creates a highlighter for the given file. Files without a
// matching lexer render as plain text.
func NewHighlighter(path string) *Highlighter {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		if ext := filepath.Ext(path); ext != "" {
			lexer = lexers.Get(ext)
		}
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	return &Highlighter{path: path, lexer: lexer, style: style}
}

// Render reads the file and returns its highlighted head. Read or tokenize
// failures degrade to whatever plain text is available.
func (h *Highlighter) Render(width int) string {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return "(unreadable: " + err.Error() + ")"
	}
	if len(data) > previewMaxBytes {
		data = data[:previewMaxBytes]
	}
	text := capLines(string(data), previewMaxLines)

	if h.lexer == nil {
		return text
	}
	iterator, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var b strings.Builder
	for _, token := range iterator.Tokens() {
		b.WriteString(h.tokenStyle(token.Type).Render(token.Value))
	}
	return b.String()
}

// tokenStyle maps a Chroma token type onto a lipgloss style via the theme's
// color table.
func (h *Highlighter) tokenStyle(tt chroma.TokenType) lipgloss.Style {
	entry := h.style.Get(tt)
	s := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	return s
}

func capLines(text string, max int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n")
}
