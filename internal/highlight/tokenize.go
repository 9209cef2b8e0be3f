// Package highlight labels spans of serialized result text for display.
package highlight

// Kind labels a span.
type Kind int

const (
	Punct Kind = iota
	Key
	String
	Number
	Boolean
	Null
)

var kindNames = [...]string{"punct", "key", "string", "number", "boolean", "null"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Span is a labeled byte range [Start, End) of the tokenized text.
type Span struct {
	Kind  Kind
	Start int
	End   int
}

// Text returns the slice of text the span covers.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// Tokenize scans text once and returns its labeled spans in order.
// Whitespace and bare words other than true, false and null produce no span.
// A string is a Key when the next non-space byte is a colon; a string with
// no closing quote runs to the end of the text. Tokenize never fails.
func Tokenize(text string) []Span {
	var spans []Span
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case isSpace(c):
			i++
		case c == '"':
			end := scanString(text, i)
			kind := String
			if followedByColon(text, end) {
				kind = Key
			}
			spans = append(spans, Span{Kind: kind, Start: i, End: end})
			i = end
		case isPunct(c):
			spans = append(spans, Span{Kind: Punct, Start: i, End: i + 1})
			i++
		case c == '-' && i+1 < len(text) && isDigit(text[i+1]):
			end := scanWord(text, i+1)
			if span, ok := classifyWord(text, i, end); ok {
				spans = append(spans, span)
			}
			i = end
		case isWordByte(c):
			end := scanWord(text, i)
			if span, ok := classifyWord(text, i, end); ok {
				spans = append(spans, span)
			}
			i = end
		default:
			i++
		}
	}
	return spans
}

// scanString returns the offset just past the closing quote of the string
// starting at start, or len(text) if it is unterminated.
func scanString(text string, start int) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(text)
}

func followedByColon(text string, from int) bool {
	for i := from; i < len(text); i++ {
		if !isSpace(text[i]) {
			return text[i] == ':'
		}
	}
	return false
}

func scanWord(text string, start int) int {
	i := start
	for i < len(text) && (isWordByte(text[i]) || isNumberByte(text, i)) {
		i++
	}
	return i
}

func classifyWord(text string, start, end int) (Span, bool) {
	word := text[start:end]
	switch word {
	case "true", "false":
		return Span{Kind: Boolean, Start: start, End: end}, true
	case "null":
		return Span{Kind: Null, Start: start, End: end}, true
	}
	if isNumber(word) {
		return Span{Kind: Number, Start: start, End: end}, true
	}
	return Span{}, false
}

// isNumber matches -?digits[.digits][(e|E)[+-]digits].
func isNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := func() int {
		n := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			n++
		}
		return n
	}
	if digits() == 0 {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		digits()
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(s)
}

// isNumberByte admits '.' and exponent signs inside a word so "1.5e-3"
// stays one word.
func isNumberByte(text string, i int) bool {
	switch text[i] {
	case '.':
		return true
	case '+', '-':
		return i > 0 && (text[i-1] == 'e' || text[i-1] == 'E')
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isPunct(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ':', ',':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
