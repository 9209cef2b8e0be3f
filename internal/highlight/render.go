package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/peternagy/dbquerytool/internal/theme"
)

// Styles maps span kinds to terminal styles.
type Styles map[Kind]lipgloss.Style

// NewStyles builds styles from a palette's colors. Empty colors leave that
// kind unstyled.
func NewStyles(c theme.Colors) Styles {
	s := Styles{}
	for kind, color := range map[Kind]string{
		String:  c.String,
		Number:  c.Number,
		Boolean: c.Boolean,
		Null:    c.Null,
		Key:     c.Key,
		Punct:   c.Punct,
	} {
		if color != "" {
			s[kind] = lipgloss.NewStyle().
				Foreground(lipgloss.Color(color)).
				TabWidth(lipgloss.NoTabConversion)
		}
	}
	return s
}

// Render returns text with every span styled. Text between spans is copied
// unchanged, so stripping the styling yields the input.
func (s Styles) Render(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, span := range Tokenize(text) {
		b.WriteString(text[pos:span.Start])
		if style, ok := s[span.Kind]; ok {
			renderLines(&b, style, span.Text(text))
		} else {
			b.WriteString(span.Text(text))
		}
		pos = span.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// renderLines styles each line of a span on its own. Style.Render pads
// multi-line input to a common width.
func renderLines(b *strings.Builder, style lipgloss.Style, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(style.Render(line))
		}
	}
}

// Render styles text with the builtin light palette.
func Render(text string) string {
	return NewStyles(theme.Light.Colors).Render(text)
}
