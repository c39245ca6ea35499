package command

import "strings"

// Tokens is an inbound text split on whitespace.
type Tokens struct {
	First string
	Rest  []string
}

// Tokenize trims text and splits it on runs of whitespace.
// Empty or blank input yields zero tokens.
func Tokenize(text string) Tokens {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Tokens{}
	}
	return Tokens{First: fields[0], Rest: fields[1:]}
}

// Empty reports whether the input had no tokens at all.
func (t Tokens) Empty() bool { return t.First == "" }

// Args joins the tokens after the command word with single spaces.
func (t Tokens) Args() string {
	return strings.Join(t.Rest, " ")
}
