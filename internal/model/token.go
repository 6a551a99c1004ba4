package model

import "fmt"

// Token is one stored or produced variant. The alphabet is binary: index 0 is
// the innovative variant, index 1 the established one.
type Token uint8

const (
	Innovative  Token = 0
	Established Token = 1
)

// Alphabet maps the two tokens to their display symbols.
type Alphabet [2]string

// DefaultAlphabet is the A/B lingueme.
var DefaultAlphabet = Alphabet{"A", "B"}

func NewAlphabet(symbols []string) (Alphabet, error) {
	if len(symbols) != 2 {
		return Alphabet{}, fmt.Errorf("alphabet needs exactly 2 symbols, got %d", len(symbols))
	}
	if symbols[0] == "" || symbols[1] == "" {
		return Alphabet{}, fmt.Errorf("alphabet symbols must be non-empty")
	}
	if symbols[0] == symbols[1] {
		return Alphabet{}, fmt.Errorf("alphabet symbols must be distinct: %q", symbols[0])
	}
	return Alphabet{symbols[0], symbols[1]}, nil
}

func (a Alphabet) Symbol(t Token) string {
	if int(t) >= len(a) {
		return "?"
	}
	return a[t]
}

func (a Alphabet) Parse(symbol string) (Token, error) {
	for i, s := range a {
		if s == symbol {
			return Token(i), nil
		}
	}
	return 0, fmt.Errorf("unknown symbol %q", symbol)
}

// Render joins the symbols of a memory buffer, e.g. "ABBA".
func (a Alphabet) Render(memory []Token) string {
	out := make([]byte, 0, len(memory))
	for _, t := range memory {
		out = append(out, a.Symbol(t)...)
	}
	return string(out)
}
