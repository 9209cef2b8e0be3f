package highlight

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labeled struct {
	kind Kind
	text string
}

func labels(text string) []labeled {
	var out []labeled
	for _, s := range Tokenize(text) {
		out = append(out, labeled{s.Kind, s.Text(text)})
	}
	return out
}

func TestTokenize_Record(t *testing.T) {
	text := `{"name": "Ada", "age": -36.5, "ok": true, "x": null, "tags": ["a", 1e3]}`

	assert.Equal(t, []labeled{
		{Punct, "{"},
		{Key, `"name"`}, {Punct, ":"}, {String, `"Ada"`}, {Punct, ","},
		{Key, `"age"`}, {Punct, ":"}, {Number, "-36.5"}, {Punct, ","},
		{Key, `"ok"`}, {Punct, ":"}, {Boolean, "true"}, {Punct, ","},
		{Key, `"x"`}, {Punct, ":"}, {Null, "null"}, {Punct, ","},
		{Key, `"tags"`}, {Punct, ":"}, {Punct, "["}, {String, `"a"`}, {Punct, ","}, {Number, "1e3"}, {Punct, "]"},
		{Punct, "}"},
	}, labels(text))
}

func TestTokenize_KeyAcrossWhitespace(t *testing.T) {
	got := labels("\"k\"\n\t  : 1")
	require.Len(t, got, 3)
	assert.Equal(t, Key, got[0].kind)
}

func TestTokenize_EscapedQuotes(t *testing.T) {
	text := `"say \"hi\"": "a\\"`
	got := labels(text)

	require.Len(t, got, 3)
	assert.Equal(t, labeled{Key, `"say \"hi\""`}, got[0])
	assert.Equal(t, labeled{String, `"a\\"`}, got[2])
}

func TestTokenize_UnterminatedString(t *testing.T) {
	text := `["ok", "never closed: 1, true`
	got := labels(text)

	require.Len(t, got, 4)
	assert.Equal(t, labeled{String, `"never closed: 1, true`}, got[3])
}

func TestTokenize_BareWords(t *testing.T) {
	assert.Empty(t, labels("ObjectId truthy nullable abc12"))
	assert.Equal(t, []labeled{{Number, "42"}}, labels("  42  "))
	assert.Equal(t, []labeled{{Boolean, "false"}}, labels("-false"))
}

func TestTokenize_Restartable(t *testing.T) {
	text := `{"a": [1, "two", {"b": null}], "c": false} "tail`
	spans := Tokenize(text)

	for i, s := range spans {
		suffix := Tokenize(text[s.Start:])
		require.Len(t, suffix, len(spans)-i, "restart at span %d", i)
		for j, got := range suffix {
			want := spans[i+j]
			assert.Equal(t, want.Kind, got.Kind)
			assert.Equal(t, want.Start-s.Start, got.Start)
			assert.Equal(t, want.End-s.Start, got.End)
		}
	}
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "key", Key.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestRender_PreservesText(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	text := `{"n": 1, "s": "x"}`
	out := Render(text)

	assert.NotEqual(t, text, out)
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, text, stripANSI(out))
}

func TestRender_MultiLineSpanKeepsText(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	text := "{\"s\": \"a\n\tlonger line\nb"
	got := labels(text)
	require.Equal(t, labeled{String, "\"a\n\tlonger line\nb"}, got[len(got)-1])

	assert.Equal(t, text, stripANSI(Render(text)))
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
